package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	ratingPattern  = regexp.MustCompile(`\d+[.,]\d+`)
	// Group separators seen in review counts: spaces, no-break spaces, dots and commas.
	countPattern = regexp.MustCompile(`\d[\d\s\x{00A0}\x{202F}.,]*`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// ParseDecimal parses the first number in s, reading a comma as the decimal
// point. It returns nil when s holds no number.
func ParseDecimal(s string) *float64 {
	return parseMatch(decimalPattern, s)
}

// ParseRating is ParseDecimal restricted to numbers with a decimal separator,
// so "4,5 sur 5 étoiles" yields 4.5 and "5 étoiles" yields nil.
func ParseRating(s string) *float64 {
	return parseMatch(ratingPattern, s)
}

func parseMatch(re *regexp.Regexp, s string) *float64 {
	m := re.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseReviewCount keeps the digits of the first number in s, dropping its
// group separators: "12 345 évaluations" yields "12345".
func ParseReviewCount(s string) *string {
	m := countPattern.FindString(s)
	if m == "" {
		return nil
	}
	digits := nonDigit.ReplaceAllString(m, "")
	return &digits
}

// ComposePrice joins the parts of a split price display. The whole part
// normally carries the decimal separator ("29,"); when it does not, a comma
// is inserted. Either part missing yields "".
func ComposePrice(whole, fraction, symbol string) string {
	whole = strings.TrimSpace(whole)
	fraction = strings.TrimSpace(fraction)
	if whole == "" || fraction == "" {
		return ""
	}
	if !strings.HasSuffix(whole, ",") && !strings.HasSuffix(whole, ".") {
		whole += ","
	}
	return whole + fraction + strings.TrimSpace(symbol)
}

// ASINFromURL takes the path component after /dp/ or /gp/product/, or the
// last path segment when neither is present. Query and fragment are dropped.
func ASINFromURL(raw string) string {
	for _, marker := range []string{"/dp/", "/gp/product/"} {
		if i := strings.Index(raw, marker); i >= 0 {
			rest := raw[i+len(marker):]
			if j := strings.IndexAny(rest, "/?#"); j >= 0 {
				rest = rest[:j]
			}
			return rest
		}
	}
	s := raw
	if j := strings.IndexAny(s, "?#"); j >= 0 {
		s = s[:j]
	}
	s = strings.TrimRight(s, "/")
	return s[strings.LastIndex(s, "/")+1:]
}

// DynamicImageKeys returns the keys of a data-a-dynamic-image payload (a JSON
// object keyed by image URL) in source order, without duplicates.
func DynamicImageKeys(raw string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	keys := []string{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

// ProductURL is the canonical product page of asin on host.
func ProductURL(host, asin string) string {
	return fmt.Sprintf("https://%s/dp/%s", host, asin)
}
