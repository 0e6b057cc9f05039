package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/okieraised/points-of-interests/internal/localsearch"
)

type rowsMsg localsearch.Snapshot

type alertMsg localsearch.Alert

type selectionMsg localsearch.Selection

type textMsg string

type modeMsg localsearch.Mode

// Events forwards session callbacks into a running program as messages.
func Events(send func(tea.Msg)) localsearch.Events {
	return localsearch.Events{
		OnRows:      func(s localsearch.Snapshot) { send(rowsMsg(s)) },
		OnAlert:     func(a localsearch.Alert) { send(alertMsg(a)) },
		OnSelection: func(s localsearch.Selection) { send(selectionMsg(s)) },
		OnText:      func(t string) { send(textMsg(t)) },
		OnMode:      func(m localsearch.Mode) { send(modeMsg(m)) },
	}
}

// Sender defers to a program that is created after the session.
type Sender struct {
	program atomic.Pointer[tea.Program]
}

// Attach sets the program messages are delivered to. Messages sent before Attach are dropped.
func (s *Sender) Attach(p *tea.Program) {
	s.program.Store(p)
}

func (s *Sender) Send(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}
