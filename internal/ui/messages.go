// Package ui provides the Bubble Tea terminal interface of the client.
package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// TaskMsg carries a completion onto the Bubble Tea event loop.
type TaskMsg struct {
	Name string
	Run  func(ctx context.Context)
}

type mountMsg struct{}

type tickMsg struct{}

// Dispatcher posts work into a running program. It satisfies the
// controller's Dispatcher and the frame scheduler's Poster.
type Dispatcher struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewDispatcher returns a dispatcher that delivers through send.
func NewDispatcher(send func(tea.Msg)) *Dispatcher {
	return &Dispatcher{send: send}
}

// Attach routes posts into p.
func (d *Dispatcher) Attach(p *tea.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = p.Send
}

// Post delivers fn as a TaskMsg. It blocks until the program accepts the
// message and fails when nothing is attached or ctx is done.
func (d *Dispatcher) Post(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	d.mu.RLock()
	send := d.send
	d.mu.RUnlock()

	if send == nil || ctx.Err() != nil {
		return false
	}
	send(TaskMsg{Name: name, Run: fn})
	return true
}
