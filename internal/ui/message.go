package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStoreChanged MsgKind = iota
	MsgNotice
	MsgBatchDone
)

// NoticeKind tells success notifications from errors.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

type notice struct {
	kind NoticeKind
	text string
}

// storeChangedMsg is the constructor for [MsgStoreChanged]
func storeChangedMsg() Msg {
	return Msg{kind: MsgStoreChanged}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(kind NoticeKind, text string) Msg {
	return Msg{kind: MsgNotice, data: notice{kind: kind, text: text}}
}

// batchDoneMsg is the constructor for [MsgBatchDone]
func batchDoneMsg(err error) Msg {
	return Msg{kind: MsgBatchDone, data: err}
}
