package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a run.
type ErrorKind string

const (
	KindReadinessTimeout   ErrorKind = "readiness_timeout"
	KindMalformedAttribute ErrorKind = "malformed_attribute"
	KindNavigation         ErrorKind = "navigation"
	KindFatalRun           ErrorKind = "fatal_run"
)

var (
	ErrCaptureNotFound = errors.New("capture not found")
	ErrCaptureExists   = errors.New("capture already recorded")
	ErrNoSearchCapture = errors.New("search results were never captured")
	ErrRunInProgress   = errors.New("a scrape run is already in progress")
)

// CrawlError carries the kind and stage of a failure.
type CrawlError struct {
	Kind    ErrorKind
	Stage   string
	Message string
	Err     error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewReadinessTimeout reports a product page that never signalled readiness.
func NewReadinessTimeout(url string, err error) *CrawlError {
	return &CrawlError{Kind: KindReadinessTimeout, Stage: "product_readiness", Message: "page not recognized: " + url, Err: err}
}

// NewMalformedAttribute reports a structured attribute that could not be decoded.
func NewMalformedAttribute(field string, err error) *CrawlError {
	return &CrawlError{Kind: KindMalformedAttribute, Stage: "extract", Message: "malformed " + field, Err: err}
}

// NewNavigationError reports an unexpected driver failure while visiting a product.
func NewNavigationError(stage string, err error) *CrawlError {
	return &CrawlError{Kind: KindNavigation, Stage: stage, Message: "browser operation failed", Err: err}
}

// NewFatalRunError reports a failure that invalidates the whole run.
func NewFatalRunError(stage, message string, err error) *CrawlError {
	return &CrawlError{Kind: KindFatalRun, Stage: stage, Message: message, Err: err}
}

// KindOf returns the kind of the first CrawlError in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsFatal reports whether err aborts a run.
func IsFatal(err error) bool {
	return KindOf(err) == KindFatalRun
}
