package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

// Finder locates widgets in the live headless tree.
type Finder interface {
	// Evaluate returns all matching widgets under roots (depth-first pre-order).
	Evaluate(roots []*headless.Widget) []*headless.Widget
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	widgets []*headless.Widget
	finder  Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *headless.Widget {
	if len(r.widgets) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder found no widgets: %s", desc))
	}
	return r.widgets[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *headless.Widget {
	if len(r.widgets) == 0 {
		return nil
	}
	return r.widgets[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *headless.Widget {
	if index < 0 || index >= len(r.widgets) {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.widgets), desc))
	}
	return r.widgets[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*headless.Widget {
	return r.widgets
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.widgets)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.widgets) > 0
}

// Property returns the effective value of name on the first match.
func (r FinderResult) Property(name string) any {
	v, _ := r.First().Property(name)
	return v
}

// --- Concrete finders ---

type kindFinder struct {
	kind vnode.Kind
}

func (f *kindFinder) Evaluate(roots []*headless.Widget) []*headless.Widget {
	return collectMatches(roots, func(w *headless.Widget) bool {
		return w.Kind() == f.kind
	})
}

func (f *kindFinder) Description() string {
	return fmt.Sprintf("ByKind(%s)", f.kind)
}

// ByKind returns a finder that matches widgets of the given kind.
func ByKind(kind vnode.Kind) Finder {
	return &kindFinder{kind: kind}
}

type propertyFinder struct {
	name  string
	value any
}

func (f *propertyFinder) Evaluate(roots []*headless.Widget) []*headless.Widget {
	return collectMatches(roots, func(w *headless.Widget) bool {
		v, ok := w.Property(f.name)
		return ok && reflect.DeepEqual(v, f.value)
	})
}

func (f *propertyFinder) Description() string {
	return fmt.Sprintf("ByProperty(%s=%v)", f.name, f.value)
}

// ByProperty returns a finder that matches widgets whose effective property
// value equals value.
func ByProperty(name string, value any) Finder {
	return &propertyFinder{name: name, value: value}
}

// ByLabel returns a finder that matches widgets whose label is exactly text.
func ByLabel(text string) Finder {
	return &propertyFinder{name: "label", value: text}
}

// ByText returns a finder that matches text nodes with exact content.
func ByText(text string) Finder {
	return &propertyFinder{name: vnode.TextProperty, value: text}
}

type labelContainingFinder struct {
	substring string
}

func (f *labelContainingFinder) Evaluate(roots []*headless.Widget) []*headless.Widget {
	return collectMatches(roots, func(w *headless.Widget) bool {
		for _, name := range []string{"label", vnode.TextProperty} {
			if s, ok := w.Properties()[name].(string); ok && strings.Contains(s, f.substring) {
				return true
			}
		}
		return false
	})
}

func (f *labelContainingFinder) Description() string {
	return fmt.Sprintf("ByLabelContaining(%q)", f.substring)
}

// ByLabelContaining returns a finder that matches widgets whose label or text
// contains substring.
func ByLabelContaining(substring string) Finder {
	return &labelContainingFinder{substring: substring}
}

type predicateFinder struct {
	fn   func(*headless.Widget) bool
	desc string
}

func (f *predicateFinder) Evaluate(roots []*headless.Widget) []*headless.Widget {
	return collectMatches(roots, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches widgets satisfying fn.
func ByPredicate(fn func(*headless.Widget) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds widgets matching 'matching' that are descendants of
// widgets matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(roots []*headless.Widget) []*headless.Widget {
	ancestors := f.of.Evaluate(roots)
	var results []*headless.Widget
	seen := make(map[*headless.Widget]bool)
	for _, ancestor := range ancestors {
		for _, w := range f.matching.Evaluate(ancestor.Children()) {
			if !seen[w] {
				seen[w] = true
				results = append(results, w)
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches widgets satisfying matching
// below any widget satisfying of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

func collectMatches(roots []*headless.Widget, match func(*headless.Widget) bool) []*headless.Widget {
	var results []*headless.Widget
	var visit func(w *headless.Widget)
	visit = func(w *headless.Widget) {
		if match(w) {
			results = append(results, w)
		}
		for _, c := range w.Children() {
			visit(c)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	return results
}
