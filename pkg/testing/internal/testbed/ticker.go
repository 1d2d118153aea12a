package testbed

import (
	"strconv"
	"time"

	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

// TickerProps configures Ticker.
type TickerProps struct {
	// Interval between ticks.
	Interval time.Duration
	// Limit stops ticking after this many ticks; zero ticks forever.
	Limit int
}

type tickMsg struct {
	start bool
}

type ticker struct {
	props TickerProps
	ticks int
}

// Ticker counts ticks of a sleeping task started by its "start" button.
var Ticker = core.NewType("Ticker", func(p TickerProps) core.Component[TickerProps, tickMsg] {
	return &ticker{props: p}
})

func (t *ticker) Update(m tickMsg) core.Action[tickMsg] {
	if !m.start {
		t.ticks++
	}
	if t.props.Limit > 0 && t.ticks >= t.props.Limit {
		return core.Render[tickMsg]()
	}
	interval := t.props.Interval
	return core.Defer(func(co *core.Co) tickMsg {
		co.Sleep(interval)
		return tickMsg{}
	})
}

func (t *ticker) Change(p TickerProps) core.Action[tickMsg] {
	t.props = p
	return core.None[tickMsg]()
}

func (t *ticker) View(s *core.Scope[tickMsg]) vnode.Node {
	return vnode.New(headless.KindBox).
		Child(
			vnode.New(headless.KindLabel).Prop("label", "ticks: "+strconv.Itoa(t.ticks)).Build(),
			vnode.New(headless.KindButton).Prop("label", "start").On("clicked", s.Trigger(tickMsg{start: true})).Build(),
		).
		Build()
}
