package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"github.com/desertthunder/borrowx/internal/formatter"
	"github.com/desertthunder/borrowx/internal/models"
)

const nameWidth = 32

func (m *Model) renderFiles() string {
	if len(m.snapshot) == 0 {
		return styles.help.Render("No files staged. Press a to add videos.")
	}

	var b strings.Builder
	for _, f := range m.snapshot {
		b.WriteString(styles.cell.Render(truncate(f.Name, nameWidth)))
		b.WriteString(styles.cell.Render(fmt.Sprintf("%9s", humanize.IBytes(uint64(max(f.Size, 0))))))
		b.WriteString(styles.cell.Render(m.bar.ViewAs(float64(f.Progress) / 100)))
		b.WriteString(m.fileStatus(f))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render("Uploading..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) fileStatus(f models.UploadFile) string {
	switch {
	case f.Error:
		return styles.err.Render("failed")
	case f.Success:
		return styles.ok.Render("done")
	case m.loading:
		return styles.warn.Render(fmt.Sprintf("%d%%", f.Progress))
	default:
		return styles.help.Render("staged")
	}
}

func (m *Model) renderBorrowings() string {
	if len(m.borrowings) == 0 {
		return styles.help.Render("No borrowings detected yet.")
	}
	return m.table.View()
}

func (m *Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	if m.notice.kind == NoticeError {
		return styles.err.Render("✗ " + m.notice.text)
	}
	return styles.ok.Render("✓ " + m.notice.text)
}

func borrowingColumns(width int) []table.Column {
	title := max(12, (width-4*10)/2-4)
	return []table.Column{
		{Title: "Licensed", Width: title},
		{Title: "From", Width: 8},
		{Title: "To", Width: 8},
		{Title: "Upload", Width: title},
		{Title: "From", Width: 8},
		{Title: "To", Width: 8},
	}
}

func borrowingRows(records []models.Borrowing) []table.Row {
	rows := make([]table.Row, len(records))
	for i, b := range records {
		rows[i] = table.Row{
			b.TitleLicense,
			formatter.FormatOffset(b.TimeLicenseStart),
			formatter.FormatOffset(b.TimeLicenseFinish),
			b.TitlePiracy,
			formatter.FormatOffset(b.TimePiracyStart),
			formatter.FormatOffset(b.TimePiracyFinish),
		}
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s + strings.Repeat(" ", n-len(r))
	}
	return string(r[:n-1]) + "…"
}
