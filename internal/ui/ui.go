package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/store"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FilesView ViewState = iota
	BorrowingsView
)

// Model represents the TUI application state.
//
// Store contents are copied into the model on every [MsgStoreChanged]; View never reads the stores directly.
type Model struct {
	ctx        context.Context
	files      *store.FileStore
	view       ViewState
	width      int
	height     int
	input      textinput.Model
	adding     bool
	table      table.Model
	bar        progress.Model
	snapshot   []models.UploadFile
	borrowings []models.Borrowing
	loading    bool
	notice     *notice
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model over the given store.
func NewModel(ctx context.Context, files *store.FileStore) *Model {
	input := textinput.New()
	input.Placeholder = "path/to/video.mp4 another.mov"
	input.Prompt = "add: "
	input.CharLimit = 4096

	m := &Model{
		ctx:   ctx,
		files: files,
		view:  FilesView,
		input: input,
		table: table.New(
			table.WithColumns(borrowingColumns(80)),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(24)),
		help: help.New(),
		keys: newKeyMap(),
	}
	m.refresh()
	return m
}

// Run starts the program and attaches it to bridge until the user quits.
func Run(ctx context.Context, files *store.FileStore, bridge *Bridge) error {
	p := tea.NewProgram(NewModel(ctx, files), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)
	defer bridge.Attach(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(40, msg.Width/4))
		m.table.SetColumns(borrowingColumns(msg.Width))
		m.table.SetHeight(max(3, msg.Height-10))
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKeys(msg)
		}
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStoreChanged:
		m.refresh()
	case MsgNotice:
		n := msg.data.(notice)
		m.notice = &n
	case MsgBatchDone:
		m.refresh()
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		m.adding = true
		m.notice = nil
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.tab):
		if m.view == FilesView {
			m.view = BorrowingsView
		} else {
			m.view = FilesView
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		return m, m.clearBorrowings()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.view == BorrowingsView {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		paths := strings.Fields(m.input.Value())
		m.closeInput()
		return m, m.stage(paths)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.input.Reset()
	m.input.Blur()
}

// stage resolves paths into candidates and uploads them as one batch.
// Paths that cannot be read are reported and the batch is not sent.
func (m *Model) stage(paths []string) tea.Cmd {
	if len(paths) == 0 {
		return nil
	}

	candidates := make([]models.Candidate, 0, len(paths))
	for _, path := range paths {
		c, err := models.CandidateFromPath(path)
		if err != nil {
			m.notice = &notice{kind: NoticeError, text: err.Error()}
			return nil
		}
		candidates = append(candidates, c)
	}

	ctx, files := m.ctx, m.files
	return func() tea.Msg {
		return batchDoneMsg(files.Add(ctx, candidates))
	}
}

// clearBorrowings resets the result store off the update loop, since its change hook sends to the program.
func (m *Model) clearBorrowings() tea.Cmd {
	borrowings := m.files.Borrowings()
	return func() tea.Msg {
		borrowings.Reset()
		return storeChangedMsg()
	}
}

func (m *Model) refresh() {
	m.snapshot = m.files.Files()
	m.loading = m.files.Loading()
	m.borrowings = m.files.Borrowings().Borrowings()
	m.table.SetRows(borrowingRows(m.borrowings))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.view {
	case FilesView:
		b.WriteString(m.renderFiles())
	case BorrowingsView:
		b.WriteString(m.renderBorrowings())
	}

	b.WriteString("\n")
	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if line := m.renderNotice(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTabs() string {
	files := fmt.Sprintf("Files (%d)", len(m.snapshot))
	borrowings := fmt.Sprintf("Borrowings (%d)", len(m.borrowings))

	if m.view == FilesView {
		files = styles.tab.Render(files)
	} else {
		borrowings = styles.tab.Render(borrowings)
	}
	return files + "   " + borrowings
}
