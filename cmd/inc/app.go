package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

// counterProps configures the demo counter.
type counterProps struct {
	Title string
	Start int
	// Out receives the final count when the counter is unmounted.
	Out io.Writer
}

type counterOp int

const (
	opInc counterOp = iota
	opDec
	opAuto
	opTick
	opClose
)

type counterMsg struct {
	op counterOp
	// gen identifies the auto-increment run a tick belongs to.
	gen int
}

type counterApp struct {
	props counterProps
	scope *core.Scope[counterMsg]
	count int
	auto  bool
	gen   int
}

var counterType = core.NewType("Counter", func(p counterProps) core.Component[counterProps, counterMsg] {
	return &counterApp{props: p, count: p.Start}
})

func (c *counterApp) Update(m counterMsg) core.Action[counterMsg] {
	switch m.op {
	case opInc:
		c.count++
	case opDec:
		c.count--
	case opAuto:
		c.auto = !c.auto
		if c.auto {
			c.gen++
			return core.Defer(tick(c.gen))
		}
	case opTick:
		// Ticks left over from a stopped run are dropped.
		if !c.auto || m.gen != c.gen {
			return core.None[counterMsg]()
		}
		c.count++
		return core.Defer(tick(c.gen))
	case opClose:
		c.scope.Quit(0)
		return core.None[counterMsg]()
	}
	return core.Render[counterMsg]()
}

func tick(gen int) core.Task[counterMsg] {
	return func(co *core.Co) counterMsg {
		co.Sleep(time.Second)
		return counterMsg{op: opTick, gen: gen}
	}
}

func (c *counterApp) Change(p counterProps) core.Action[counterMsg] {
	c.props = p
	return core.Render[counterMsg]()
}

func (c *counterApp) View(s *core.Scope[counterMsg]) vnode.Node {
	c.scope = s
	autoLabel := "auto"
	if c.auto {
		autoLabel = "stop"
	}
	return vnode.New(headless.KindWindow).
		Prop("title", c.props.Title).
		On("close-request", s.Trigger(counterMsg{op: opClose})).
		Child(vnode.New(headless.KindBox).
			Prop("orientation", "horizontal").
			Prop("spacing", 4).
			Child(
				vnode.New(headless.KindButton).Key("dec").Prop("label", "dec!").On("clicked", s.Trigger(counterMsg{op: opDec})).Build(),
				vnode.New(headless.KindLabel).Key("count").Prop("label", strconv.Itoa(c.count)).ChildProp("expand", true).Build(),
				vnode.New(headless.KindButton).Key("inc").Prop("label", "inc!").On("clicked", s.Trigger(counterMsg{op: opInc})).Build(),
				vnode.New(headless.KindButton).Key("auto").Prop("label", autoLabel).On("clicked", s.Trigger(counterMsg{op: opAuto})).Build(),
			).
			Build()).
		Build()
}

func (c *counterApp) Unmounted() {
	if c.props.Out != nil {
		fmt.Fprintf(c.props.Out, "count: %d\n", c.count)
	}
}
