package testbed

import (
	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

type echoMsg string

type echo struct {
	text string
}

// Echo mirrors an entry's text in a label.
var Echo = core.NewType("Echo", func(struct{}) core.Component[struct{}, echoMsg] {
	return &echo{}
})

func (e *echo) Update(m echoMsg) core.Action[echoMsg] {
	e.text = string(m)
	return core.Render[echoMsg]()
}

func (e *echo) Change(struct{}) core.Action[echoMsg] {
	return core.None[echoMsg]()
}

func (e *echo) View(s *core.Scope[echoMsg]) vnode.Node {
	return vnode.New(headless.KindBox).
		Child(
			vnode.New(headless.KindEntry).
				Prop("text", e.text).
				On("changed", s.Handler(func(ev vnode.Event) echoMsg {
					text, _ := ev.Arg(0).(string)
					return echoMsg(text)
				})).
				Build(),
			vnode.New(headless.KindLabel).Prop("label", "echo: "+e.text).Build(),
		).
		Build()
}
