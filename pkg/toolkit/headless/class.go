package headless

import (
	"reflect"

	"github.com/go-drift/vtree/pkg/vnode"
)

// PropSpec describes one property of a widget class.
type PropSpec struct {
	// Default is the value a property resolves to when unset or reset.
	Default any
	// Type is the accepted value type. Nil accepts any value.
	Type reflect.Type
}

// Class describes a headless widget kind.
type Class struct {
	Kind  vnode.Kind
	Props map[string]PropSpec
	// Events lists the event names widgets of this class can emit.
	Events []string
	// Container reports whether widgets of this class accept children.
	Container bool
	// MaxChildren limits the number of children; zero means unlimited.
	MaxChildren int
	// ChildProps describes the properties a container keeps for each child.
	ChildProps map[string]PropSpec
	// Notify names an event emitted, with the new value, whenever the
	// property of the same map key is set. It models toolkits whose setters
	// fire change signals.
	Notify map[string]string
}

var (
	stringType = reflect.TypeFor[string]()
	intType    = reflect.TypeFor[int]()
	boolType   = reflect.TypeFor[bool]()
)

// Standard widget kinds.
const (
	KindWindow      vnode.Kind = "Window"
	KindBox         vnode.Kind = "Box"
	KindButton      vnode.Kind = "Button"
	KindLabel       vnode.Kind = "Label"
	KindEntry       vnode.Kind = "Entry"
	KindCheckButton vnode.Kind = "CheckButton"
	KindListBox     vnode.Kind = "ListBox"
)

// StandardClasses returns the built-in widget classes.
func StandardClasses() []Class {
	return []Class{
		{
			Kind: KindWindow,
			Props: map[string]PropSpec{
				"title":          {Default: "", Type: stringType},
				"default-width":  {Default: 0, Type: intType},
				"default-height": {Default: 0, Type: intType},
			},
			Events:      []string{"close-request"},
			Container:   true,
			MaxChildren: 1,
		},
		{
			Kind: KindBox,
			Props: map[string]PropSpec{
				"orientation": {Default: "vertical", Type: stringType},
				"spacing":     {Default: 0, Type: intType},
			},
			Container: true,
			ChildProps: map[string]PropSpec{
				"expand":    {Default: false, Type: boolType},
				"pack-type": {Default: "start", Type: stringType},
				"padding":   {Default: 0, Type: intType},
			},
		},
		{
			Kind: KindButton,
			Props: map[string]PropSpec{
				"label":     {Default: "", Type: stringType},
				"sensitive": {Default: true, Type: boolType},
			},
			Events: []string{"clicked"},
		},
		{
			Kind: KindLabel,
			Props: map[string]PropSpec{
				"label":      {Default: "", Type: stringType},
				"selectable": {Default: false, Type: boolType},
			},
		},
		{
			Kind: KindEntry,
			Props: map[string]PropSpec{
				"text":        {Default: "", Type: stringType},
				"placeholder": {Default: "", Type: stringType},
				"editable":    {Default: true, Type: boolType},
			},
			Events: []string{"changed", "activate"},
			Notify: map[string]string{"text": "changed"},
		},
		{
			Kind: KindCheckButton,
			Props: map[string]PropSpec{
				"label":  {Default: "", Type: stringType},
				"active": {Default: false, Type: boolType},
			},
			Events: []string{"toggled"},
			Notify: map[string]string{"active": "toggled"},
		},
		{
			Kind:      KindListBox,
			Events:    []string{"row-activated"},
			Container: true,
		},
		{
			Kind: vnode.TextKind,
			Props: map[string]PropSpec{
				vnode.TextProperty: {Default: "", Type: stringType},
			},
		},
	}
}
