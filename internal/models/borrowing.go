package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Borrowing schema versions.
//
// Version 1 identified the licensed video by name and link and carried string timestamps.
// Version 2 names both sides of the match and uses integer second offsets. Output is always version 2.
const (
	BorrowingV1 = 1
	BorrowingV2 = 2
)

// Borrowing is one detected reuse of licensed material inside an uploaded video.
//
// Offsets are whole seconds from the start of the respective video.
type Borrowing struct {
	ID                string `json:"id,omitempty"`
	TitleLicense      string `json:"title_license"`
	TitlePiracy       string `json:"title_piracy"`
	LicenseLink       string `json:"license_link,omitempty"`
	TimeLicenseStart  int    `json:"time_license_start"`
	TimeLicenseFinish int    `json:"time_license_finish"`
	TimePiracyStart   int    `json:"time_piracy_start"`
	TimePiracyFinish  int    `json:"time_piracy_finish"`

	// SchemaVersion records which shape the record was decoded from.
	SchemaVersion int `json:"-"`
}

// borrowingV2 avoids recursing into [Borrowing.UnmarshalJSON].
type borrowingV2 Borrowing

type borrowingV1 struct {
	ID           string          `json:"id"`
	OriginalLink string          `json:"originalLink"`
	NameVideo    string          `json:"nameVideo"`
	Start        json.RawMessage `json:"start"`
	End          json.RawMessage `json:"end"`
}

var v1Keys = []string{"originalLink", "nameVideo", "start", "end"}

// UnmarshalJSON decodes either schema version.
//
// Version 1 records are migrated: nameVideo becomes TitleLicense, originalLink becomes LicenseLink and
// start/end become the licensed-side offsets.
func (b *Borrowing) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	legacy := false
	for _, k := range v1Keys {
		if _, ok := keys[k]; ok {
			legacy = true
			break
		}
	}

	if !legacy {
		var v2 borrowingV2
		if err := json.Unmarshal(data, &v2); err != nil {
			return err
		}
		*b = Borrowing(v2)
		b.SchemaVersion = BorrowingV2
		return nil
	}

	var v1 borrowingV1
	if err := json.Unmarshal(data, &v1); err != nil {
		return err
	}

	start, err := decodeOffset(v1.Start)
	if err != nil {
		return fmt.Errorf("invalid borrowing start: %w", err)
	}
	end, err := decodeOffset(v1.End)
	if err != nil {
		return fmt.Errorf("invalid borrowing end: %w", err)
	}

	*b = Borrowing{
		ID:                v1.ID,
		TitleLicense:      v1.NameVideo,
		LicenseLink:       v1.OriginalLink,
		TimeLicenseStart:  start,
		TimeLicenseFinish: end,
		SchemaVersion:     BorrowingV1,
	}
	return nil
}

// decodeOffset accepts a JSON number or a timestamp string.
func decodeOffset(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return ParseOffset(s)
}

// ParseOffset converts "HH:MM:SS", "MM:SS" or plain seconds into whole seconds.
// Fractional seconds are truncated.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("malformed offset %q", s)
	}

	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("malformed offset %q", s)
		}
		total = total*60 + v
	}

	return int(total), nil
}
