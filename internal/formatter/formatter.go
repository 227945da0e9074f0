// package formatter renders borrowing tables and file sizes for the CLI, the TUI and the submission download
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/dustin/go-humanize"
)

// Export formats accepted by [Export].
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists every export format.
var Formats = []string{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// Headers are the column titles of the borrowing table, in column order.
var Headers = []string{"License title", "Licensed start", "Licensed end", "Piracy title", "Piracy start", "Piracy end"}

// Row renders one borrowing as table cells matching [Headers].
func Row(b models.Borrowing) []string {
	return []string{
		b.TitleLicense,
		FormatOffset(b.TimeLicenseStart),
		FormatOffset(b.TimeLicenseFinish),
		b.TitlePiracy,
		FormatOffset(b.TimePiracyStart),
		FormatOffset(b.TimePiracyFinish),
	}
}

// Export renders records in the named format.
func Export(format string, records []models.Borrowing) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ExportToText(records)
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown, "md":
		return ExportToMarkdown("Borrowings", records)
	case FormatJSON:
		return ExportToJSON(records, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV converts borrowings to CSV with raw second offsets, one record per line.
func ExportToCSV(records []models.Borrowing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"title_license", "time_license_start", "time_license_finish", "title_piracy", "time_piracy_start", "time_piracy_finish", "license_link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, b := range records {
		record := []string{
			b.TitleLicense,
			strconv.Itoa(b.TimeLicenseStart),
			strconv.Itoa(b.TimeLicenseFinish),
			b.TitlePiracy,
			strconv.Itoa(b.TimePiracyStart),
			strconv.Itoa(b.TimePiracyFinish),
			b.LicenseLink,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts borrowings to a Markdown table under a level one heading.
func ExportToMarkdown(title string, records []models.Borrowing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Borrowings**: %d\n\n", len(records))

	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	writeMarkdownRow(&buf, Headers)
	buf.WriteString("|")
	for range Headers {
		buf.WriteString(" --- |")
	}
	buf.WriteString("\n")

	for _, b := range records {
		writeMarkdownRow(&buf, Row(b))
	}

	return buf.Bytes(), nil
}

func writeMarkdownRow(buf *bytes.Buffer, cells []string) {
	buf.WriteString("|")
	for _, c := range cells {
		fmt.Fprintf(buf, " %s |", escapeMarkdown(c))
	}
	buf.WriteString("\n")
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText converts borrowings to numbered plain text lines. An empty list renders nothing.
func ExportToText(records []models.Borrowing) ([]byte, error) {
	var buf bytes.Buffer

	for i, b := range records {
		fmt.Fprintf(&buf, "%d. %s [%s-%s] <- %s [%s-%s]\n",
			i+1,
			b.TitleLicense, FormatOffset(b.TimeLicenseStart), FormatOffset(b.TimeLicenseFinish),
			b.TitlePiracy, FormatOffset(b.TimePiracyStart), FormatOffset(b.TimePiracyFinish),
		)
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes borrowings as a JSON array; nil encodes as [].
func ExportToJSON(records []models.Borrowing, pretty bool) ([]byte, error) {
	if records == nil {
		records = []models.Borrowing{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(data, '\n'), nil
}

// WriteExport renders records in format and writes them to path.
func WriteExport(path, format string, records []models.Borrowing) error {
	data, err := Export(format, records)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// FormatOffset renders whole seconds as HH:MM:SS.
func FormatOffset(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

const gib = 1 << 30

// FormatSize renders a byte count in MB below 1 GiB and in GB otherwise, with two decimals.
// Units are binary: 1 MB here is 1024*1024 bytes.
func FormatSize(size int64) string {
	if size < gib {
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	}
	return fmt.Sprintf("%.2f GB", float64(size)/gib)
}

// HumanSize renders a byte count with IEC units, e.g. "3.0 GiB".
func HumanSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
