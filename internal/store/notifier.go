package store

import "github.com/charmbracelet/log"

// Notifier is the user-facing channel for batch outcomes.
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// LogNotifier reports notifications through a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Error(msg string)   { n.Logger.Error(msg) }
func (n LogNotifier) Success(msg string) { n.Logger.Info(msg) }

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Error(string)   {}
func (NopNotifier) Success(string) {}
