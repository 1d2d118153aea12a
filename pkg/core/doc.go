// Package core provides the component lifecycle engine and the reconciler
// that keeps live toolkit widgets in sync with virtual node trees.
//
// # Components
//
// A component owns persistent state, reacts to messages and describes its
// widgets declaratively:
//
//	type counter struct{ count int }
//
//	type msg int
//
//	func (c *counter) Update(m msg) core.Action[msg] {
//	    c.count += int(m)
//	    return core.Render[msg]()
//	}
//
//	func (c *counter) Change(struct{}) core.Action[msg] { return core.None[msg]() }
//
//	func (c *counter) View(s *core.Scope[msg]) vnode.Node {
//	    return vnode.New("Button").
//	        Prop("label", fmt.Sprint(c.count)).
//	        On("clicked", s.Trigger(1)).
//	        Build()
//	}
//
//	var Counter = core.NewType("Counter", func(struct{}) core.Component[struct{}, msg] {
//	    return &counter{}
//	})
//
// # Scheduling
//
// All component state and all widget mutation is driven from a single loop
// owned by a Scheduler. Messages are applied in arrival order; render
// requests raised while a pass dispatches messages collapse into one
// reconciliation per component. Deferred tasks run cooperatively: their
// bodies execute only while the loop is parked, and they suspend at
// explicit points (Co.Yield, Co.Sleep, Await). A task's result re-enters the
// originating component as an ordinary message.
//
// # Reconciliation
//
// Nodes of the same kind are patched in place: changed properties are set,
// removed properties are reset, event handlers are rebound without touching
// the toolkit connection, and children are matched by key or position. Nodes
// of different kinds are remounted. Nested components are never diffed
// structurally; they receive their new properties as a message.
package core
