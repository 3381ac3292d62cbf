package domain

import "fmt"

// CaptureKind tells search snapshots from product snapshots.
type CaptureKind string

const (
	KindSearch  CaptureKind = "search"
	KindProduct CaptureKind = "product"
)

// CaptureKey addresses one snapshot in a capture store.
type CaptureKey struct {
	Kind  CaptureKind
	Index int
}

// SearchKey is the key of the single search snapshot of a run.
func SearchKey() CaptureKey {
	return CaptureKey{Kind: KindSearch}
}

// ProductKey returns the key of the i-th visited product (1-based).
func ProductKey(i int) CaptureKey {
	return CaptureKey{Kind: KindProduct, Index: i}
}

// String renders the label used in logs: search_results or product_<i>.
func (k CaptureKey) String() string {
	if k.Kind == KindSearch {
		return "search_results"
	}
	return fmt.Sprintf("product_%d", k.Index)
}

// VisitStatus is the outcome tag of a single product visit.
type VisitStatus string

const (
	VisitCaptured VisitStatus = "captured"
	VisitSkipped  VisitStatus = "skipped"
)

// VisitOutcome records what happened to one candidate product.
type VisitOutcome struct {
	Index  int
	URL    string
	Status VisitStatus
	Reason string
}

func Captured(index int, url string) VisitOutcome {
	return VisitOutcome{Index: index, URL: url, Status: VisitCaptured}
}

func Skipped(index int, url string, reason string) VisitOutcome {
	return VisitOutcome{Index: index, URL: url, Status: VisitSkipped, Reason: reason}
}
