package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/borrowx/internal/store"
)

var _ store.Notifier = (*Bridge)(nil)

// Bridge forwards store notifications and change events into a running [tea.Program].
//
// The stores are built before the program exists, so the program is attached afterwards.
// Messages sent while no program is attached are dropped.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

// Attach routes subsequent messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()

	if p != nil {
		p.Send(msg)
	}
}

// Error implements [store.Notifier].
func (b *Bridge) Error(msg string) { b.send(noticeMsg(NoticeError, msg)) }

// Success implements [store.Notifier].
func (b *Bridge) Success(msg string) { b.send(noticeMsg(NoticeSuccess, msg)) }

// Changed is meant for the stores' OnChange hooks.
func (b *Bridge) Changed() { b.send(storeChangedMsg()) }
