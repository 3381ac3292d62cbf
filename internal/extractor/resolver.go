package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is one step of a fallback chain: a selector, an accessor (trimmed
// text, or an attribute when Attr is set) and an optional transform.
type Rule struct {
	Selector  string
	Attr      string
	First     bool
	Transform func(string) string
}

// Text reads the concatenated text of every match.
func Text(selector string) Rule {
	return Rule{Selector: selector}
}

// FirstText reads the text of the first match only.
func FirstText(selector string) Rule {
	return Rule{Selector: selector, First: true}
}

// Attr reads an attribute of the first match.
func Attr(selector, name string) Rule {
	return Rule{Selector: selector, Attr: name, First: true}
}

// Then returns a copy of r whose non-empty value is passed through fn.
func (r Rule) Then(fn func(string) string) Rule {
	r.Transform = fn
	return r
}

func (r Rule) eval(root *goquery.Selection) string {
	sel := root.Find(r.Selector)
	if r.First {
		sel = sel.First()
	}
	var v string
	if r.Attr != "" {
		v, _ = sel.Attr(r.Attr)
	} else {
		v = sel.Text()
	}
	v = strings.TrimSpace(v)
	if v != "" && r.Transform != nil {
		v = strings.TrimSpace(r.Transform(v))
	}
	return v
}

// Resolve returns the value of the first rule that yields a non-empty
// string, or "" when every rule misses.
func Resolve(root *goquery.Selection, rules ...Rule) string {
	for _, r := range rules {
		if v := r.eval(root); v != "" {
			return v
		}
	}
	return ""
}

// ResolveOptional is Resolve with a miss reported as nil.
func ResolveOptional(root *goquery.Selection, rules ...Rule) *string {
	if v := Resolve(root, rules...); v != "" {
		return &v
	}
	return nil
}

// ResolveFloat resolves text through rules and converts it with parse.
// A miss or an unparsable value yields nil.
func ResolveFloat(root *goquery.Selection, parse func(string) *float64, rules ...Rule) *float64 {
	v := Resolve(root, rules...)
	if v == "" {
		return nil
	}
	return parse(v)
}

// ResolveAll returns the trimmed text of every match in document order.
// It never returns nil.
func ResolveAll(root *goquery.Selection, selector string) []string {
	out := []string{}
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// Exists reports whether selector matches anything under root.
func Exists(root *goquery.Selection, selector string) bool {
	return root.Find(selector).Length() > 0
}

func ptr[T any](v T) *T {
	return &v
}
