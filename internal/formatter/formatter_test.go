package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
	th "github.com/desertthunder/borrowx/internal/testing"
)

func sampleRecords() []models.Borrowing {
	return []models.Borrowing{
		{
			TitleLicense:      "Licensed Film",
			TitlePiracy:       "upload.mp4",
			LicenseLink:       "https://example.com/film",
			TimeLicenseStart:  65,
			TimeLicenseFinish: 3725,
			TimePiracyStart:   0,
			TimePiracyFinish:  3660,
		},
		{
			TitleLicense:      "Show | Pilot",
			TitlePiracy:       "upload.mp4",
			TimeLicenseStart:  10,
			TimeLicenseFinish: 20,
			TimePiracyStart:   100,
			TimePiracyFinish:  110,
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleRecords())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 records, got %d lines", len(lines))
		}
		if lines[0] != "title_license,time_license_start,time_license_finish,title_piracy,time_piracy_start,time_piracy_finish,license_link" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "Licensed Film,65,3725,upload.mp4,0,3660,https://example.com/film" {
			t.Errorf("unexpected first record: %s", lines[1])
		}
	})

	t.Run("ExportToCSV Empty", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("expected only the header line, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("Results", sampleRecords())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Results",
			"**Borrowings**: 2",
			"| License title | Licensed start |",
			"| Licensed Film | 00:01:05 | 01:02:05 | upload.mp4 | 00:00:00 | 01:01:00 |",
			`Show \| Pilot`,
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Empty", func(t *testing.T) {
		data, err := ExportToMarkdown("Results", nil)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "|") {
			t.Errorf("empty table should render no rows, got:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleRecords())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "1. Licensed Film [00:01:05-01:02:05] <- upload.mp4 [00:00:00-01:01:00]\n"
		if !strings.HasPrefix(string(data), want) {
			t.Errorf("unexpected text output:\n%s", data)
		}

		empty, _ := ExportToText(nil)
		if len(empty) != 0 {
			t.Errorf("empty collection should render nothing, got %q", empty)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(nil, false)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected [], got %s", data)
		}

		data, err = ExportToJSON(sampleRecords(), true)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.Borrowing
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].TimeLicenseFinish != 3725 {
			t.Errorf("unexpected decoded records %+v", decoded)
		}
	})

	t.Run("Export Dispatch", func(t *testing.T) {
		for _, format := range Formats {
			if _, err := Export(format, sampleRecords()); err != nil {
				t.Errorf("format %s failed: %v", format, err)
			}
		}

		if _, err := Export("xml", nil); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "borrowings.csv")
		if err := WriteExport(path, FormatCSV, sampleRecords()); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Licensed Film") {
			t.Errorf("written file missing records: %s", content)
		}
	})
}

func TestFormatOffset(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{36000 + 61, "10:01:01"},
		{-5, "00:00:00"},
	}

	for _, tt := range tc {
		if got := FormatOffset(tt.seconds); got != tt.want {
			t.Errorf("FormatOffset(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tc := []struct {
		name string
		size int64
		want string
	}{
		{name: "zero", size: 0, want: "0.00 MB"},
		{name: "ten megabytes", size: 10 << 20, want: "10.00 MB"},
		{name: "just under a gigabyte", size: 1<<30 - 1, want: "1024.00 MB"},
		{name: "one gigabyte", size: 1 << 30, want: "1.00 GB"},
		{name: "limit", size: shared.MaxFileSize, want: "3.00 GB"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.size); got != tt.want {
				t.Errorf("FormatSize(%d) = %s, want %s", tt.size, got, tt.want)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	if got := HumanSize(3 << 30); got != "3.0 GiB" {
		t.Errorf("HumanSize(3 GiB) = %s", got)
	}
	if got := HumanSize(-1); got != "0 B" {
		t.Errorf("HumanSize(-1) = %s", got)
	}
}
