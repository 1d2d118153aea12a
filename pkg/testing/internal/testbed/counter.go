// Package testbed provides internal test components for the testing harness.
package testbed

import (
	"strconv"

	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

// CounterMsg increments the counter by its value.
type CounterMsg int

type counter struct {
	count int
}

// Counter displays a count with an "inc!" button. Its props are the initial count.
var Counter = core.NewType("Counter", func(initial int) core.Component[int, CounterMsg] {
	return &counter{count: initial}
})

func (c *counter) Update(m CounterMsg) core.Action[CounterMsg] {
	c.count += int(m)
	return core.Render[CounterMsg]()
}

func (c *counter) Change(int) core.Action[CounterMsg] {
	return core.None[CounterMsg]()
}

func (c *counter) View(s *core.Scope[CounterMsg]) vnode.Node {
	return vnode.New(headless.KindWindow).
		Prop("title", "Counter").
		Child(vnode.New(headless.KindBox).
			Child(
				vnode.New(headless.KindLabel).Prop("label", strconv.Itoa(c.count)).Build(),
				vnode.New(headless.KindButton).Prop("label", "inc!").On("clicked", s.Trigger(1)).Build(),
			).
			Build()).
		Build()
}
