// Package headless provides an in-memory widget toolkit.
//
// It implements the toolkit contract faithfully enough to run applications
// without a display: widgets validate property types against their class,
// connected events can be emitted to simulate user input, and the live tree
// can be printed for inspection.
package headless

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/go-drift/vtree/pkg/toolkit"
)

// Toolkit is a toolkit.Registry preloaded with headless widget classes.
type Toolkit struct {
	*toolkit.Registry
}

// New returns a toolkit with the standard classes installed.
func New() *Toolkit {
	tk := &Toolkit{Registry: toolkit.NewRegistry()}
	for _, class := range StandardClasses() {
		tk.Register(class)
	}
	return tk
}

// Register installs a widget class.
func (t *Toolkit) Register(class Class) {
	c := class
	t.RegisterFactory(factory{class: &c})
}

// Widget returns the live widget with id, or nil.
func (t *Toolkit) Widget(id int64) *Widget {
	w, _ := t.Lookup(id).(*Widget)
	return w
}

// Resolve returns the headless widget behind a toolkit handle, or nil.
func (t *Toolkit) Resolve(w toolkit.Widget) *Widget {
	if w == nil {
		return nil
	}
	return t.Widget(w.ID())
}

// Roots returns live widgets without a parent, ordered by id.
func (t *Toolkit) Roots() []*Widget {
	var roots []*Widget
	for _, obj := range t.Widgets() {
		if w, ok := obj.(*Widget); ok && w.Parent() == nil {
			roots = append(roots, w)
		}
	}
	return roots
}

// Dump writes an indented description of every live root and its subtree.
func (t *Toolkit) Dump(out io.Writer) error {
	for _, root := range t.Roots() {
		if err := dump(out, root, 0); err != nil {
			return err
		}
	}
	return nil
}

func dump(out io.Writer, w *Widget, depth int) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(w.String())

	props := w.Properties()
	for _, name := range slices.Sorted(maps.Keys(props)) {
		fmt.Fprintf(&sb, " %s=%v", name, quote(props[name]))
	}
	packing := w.ChildProperties()
	for _, name := range slices.Sorted(maps.Keys(packing)) {
		fmt.Fprintf(&sb, " @%s=%v", name, quote(packing[name]))
	}

	if width := w.NaturalWidth(); width > 0 {
		fmt.Fprintf(&sb, " [%dpx]", width)
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(out, sb.String()); err != nil {
		return err
	}
	for _, child := range w.Children() {
		if err := dump(out, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func quote(v any) any {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return v
}
