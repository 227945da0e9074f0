// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Two views share one screen:
//  1. [FilesView] : Staged uploads with size, progress bar and status
//  2. [BorrowingsView] : Detected borrowings of every uploaded video, as a table
//
// Files are added by typing paths into the input opened with a; each submission is one batch.
// The stores report changes and notifications through a [Bridge], which forwards them to the
// running program as messages, so uploads never touch the model directly.
package ui
