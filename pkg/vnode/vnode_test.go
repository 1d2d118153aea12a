package vnode

import (
	"testing"

	"github.com/go-drift/vtree/pkg/callback"
)

type fakeSpec struct {
	name  string
	props any
}

func (s fakeSpec) ComponentType() any    { return s.name }
func (s fakeSpec) ComponentName() string { return s.name }
func (s fakeSpec) Props() any            { return s.props }

func TestResolve(t *testing.T) {
	label := "hello"
	var nilLabel *string

	tests := []struct {
		name    string
		input   any
		want    any
		present bool
	}{
		{"bare value", "hello", "hello", true},
		{"pointer", &label, "hello", true},
		{"nil pointer", nilLabel, nil, false},
		{"some", Some("hello"), "hello", true},
		{"some pointer", Some(&label), "hello", true},
		{"none", None[string](), nil, false},
		{"nil", nil, nil, false},
		{"zero int", 0, 0, true},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.input)
		if ok != tt.present || got != tt.want {
			t.Errorf("%s: Resolve = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.present)
		}
	}
}

func TestResolve_KeepsReferencePointers(t *testing.T) {
	type model struct{ name string }
	m := &model{name: "a"}

	got, ok := Resolve(m)
	if !ok || got != any(m) {
		t.Fatalf("Resolve(*model) = (%v, %v), want the same pointer", got, ok)
	}
	got, ok = Resolve(Some(m))
	if !ok || got != any(m) {
		t.Errorf("Resolve(Some(*model)) = (%v, %v), want the same pointer", got, ok)
	}
	var missing *model
	if _, ok := Resolve(missing); ok {
		t.Error("nil reference pointer should be absent")
	}
}

func TestOptional_OrElse(t *testing.T) {
	if got := None[int]().OrElse(7); got != 7 {
		t.Errorf("OrElse on None = %d, want 7", got)
	}
	if got := Some(3).OrElse(7); got != 3 {
		t.Errorf("OrElse on Some = %d, want 3", got)
	}
}

func TestBuilder_PropsKeepOrderAndDropUnset(t *testing.T) {
	obj := New("Label").
		Prop("label", "a").
		Prop("width", 10).
		Prop("tooltip", None[string]()).
		Prop("label", Some("b")).
		Build()

	if len(obj.Props) != 2 {
		t.Fatalf("expected 2 props, got %v", obj.Props)
	}
	if obj.Props[0].Name != "label" || obj.Props[0].Value != "b" {
		t.Errorf("first prop = %+v, want label=b", obj.Props[0])
	}
	if obj.Props[1].Name != "width" {
		t.Errorf("second prop = %+v, want width", obj.Props[1])
	}
}

func TestBuilder_UnsetRemovesEarlierValue(t *testing.T) {
	var missing *string
	obj := New("Label").Prop("label", "a").Prop("label", missing).Build()
	if _, ok := obj.Prop("label"); ok {
		t.Error("expected label to be removed")
	}
}

func TestBuilder_BuildIsImmutable(t *testing.T) {
	b := New("Box").Child(NewText("one"))
	first := b.Build()
	b.Child(NewText("two")).Prop("spacing", 4)

	if len(first.Children) != 1 {
		t.Errorf("first build children = %d, want 1", len(first.Children))
	}
	if len(first.Props) != 0 {
		t.Errorf("first build props = %d, want 0", len(first.Props))
	}
}

func TestBuilder_ChildProps(t *testing.T) {
	obj := New("Button").
		Prop("label", "x").
		ChildProp("expand", true).
		ChildProp("pack-type", "start").
		ChildProp("pack-type", None[string]()).
		Build()

	if len(obj.Props) != 1 {
		t.Errorf("props = %v, child props must not leak into them", obj.Props)
	}
	if len(obj.ChildProps) != 1 || obj.ChildProps[0].Name != "expand" || obj.ChildProps[0].Value != true {
		t.Errorf("child props = %v, want [expand=true]", obj.ChildProps)
	}
}

func TestWithChildProp(t *testing.T) {
	comp := Component{Key: "c", Spec: fakeSpec{name: "Counter"}}
	placed := WithChildProp(comp, "pack-type", "end")

	props := ChildPropsOf(placed)
	if len(props) != 1 || props[0].Name != "pack-type" || props[0].Value != "end" {
		t.Errorf("component child props = %v", props)
	}
	if len(comp.ChildProps) != 0 {
		t.Error("WithChildProp must not mutate the original")
	}
	if KeyOf(placed) != "c" {
		t.Errorf("key lost: %q", KeyOf(placed))
	}

	text := WithChildProp(NewText("x"), "expand", true)
	if ChildPropsOf(text) != nil {
		t.Error("text nodes carry no child props")
	}
}

func TestBuilder_Handlers(t *testing.T) {
	cb := callback.New(func(Event) {})
	obj := New("Button").
		On("clicked", cb).
		On("ignored", callback.Empty[Event]()).
		Build()

	if len(obj.Handlers) != 1 {
		t.Fatalf("handlers = %d, want 1", len(obj.Handlers))
	}
	got, ok := obj.Handler("clicked")
	if !ok || !got.Equal(cb) {
		t.Error("clicked handler not stored")
	}
}

func TestBuilder_SkipsNilChildren(t *testing.T) {
	var missing *Object
	obj := New("Box").Child(nil, missing, &Text{Content: "x"}).Build()
	if len(obj.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(obj.Children))
	}
	if _, ok := obj.Children[0].(Text); !ok {
		t.Errorf("pointer child should be stored by value, got %T", obj.Children[0])
	}
}

func TestElement_SortsMapEntries(t *testing.T) {
	obj := Element("Entry", map[string]any{"text": "x", "editable": true, "max-length": 3}, nil, nil)
	names := []string{obj.Props[0].Name, obj.Props[1].Name, obj.Props[2].Name}
	want := []string{"editable", "max-length", "text"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("prop order = %v, want %v", names, want)
		}
	}
}

func TestKindOfAndKeyOf(t *testing.T) {
	comp := Component{Key: "c", Spec: fakeSpec{name: "Counter"}}
	tests := []struct {
		node Node
		kind Kind
		key  string
	}{
		{New("Button").Key("b").Build(), "Button", "b"},
		{Text{Content: "x"}, TextKind, ""},
		{&Text{Content: "x", Key: "t"}, TextKind, "t"},
		{comp, "component:Counter", "c"},
		{&comp, "component:Counter", "c"},
	}
	for _, tt := range tests {
		if got := KindOf(tt.node); got != tt.kind {
			t.Errorf("KindOf(%T) = %q, want %q", tt.node, got, tt.kind)
		}
		if got := KeyOf(tt.node); got != tt.key {
			t.Errorf("KeyOf(%T) = %q, want %q", tt.node, got, tt.key)
		}
	}
}

func TestWithKey(t *testing.T) {
	orig := NewText("x")
	keyed := WithKey(orig, "k")
	if KeyOf(keyed) != "k" {
		t.Errorf("WithKey key = %q", KeyOf(keyed))
	}
	if orig.Key != "" {
		t.Error("WithKey must not mutate the original")
	}
}

func TestEventArg(t *testing.T) {
	ev := Event{Name: "changed", Args: []any{"text"}}
	if ev.Arg(0) != "text" {
		t.Errorf("Arg(0) = %v", ev.Arg(0))
	}
	if ev.Arg(3) != nil {
		t.Errorf("Arg(3) = %v, want nil", ev.Arg(3))
	}
}
