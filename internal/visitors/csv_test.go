package visitors

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"

	"visitor-registration/internal/storage"
)

func csvRecords() []storage.Visitor {
	in := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	out := in.Add(45 * time.Minute)
	return []storage.Visitor{
		{
			Name:        "Jan Jansen",
			Email:       "jan@voorbeeld.nl",
			Phone:       "0612345678",
			Company:     "Acme BV",
			Host:        "Pieters",
			Reason:      "Meeting",
			CheckedInAt: in,
			Status:      storage.StatusPresent,
		},
		{
			Name:         "Piet de Vries",
			Email:        "piet@voorbeeld.nl",
			Phone:        "+31612345678",
			Company:      "Vries & Zn",
			Host:         "Bakker",
			Reason:       "Levering",
			CheckedInAt:  in,
			CheckedOutAt: &out,
			Status:       storage.StatusDeparted,
		},
	}
}

func TestWriteCSVPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, csvRecords(), false); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "name,email,phone,company,host,reason,checked_in_at,checked_out_at,status" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "2026-03-12 09:30:00") {
		t.Errorf("expected formatted check-in time in %q", lines[1])
	}
	// Present visitor has an empty checkout column
	if !strings.Contains(lines[1], ",,present") {
		t.Errorf("expected empty checkout field, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "2026-03-12 10:15:00") {
		t.Errorf("expected formatted checkout time in %q", lines[2])
	}
}

func TestWriteCSVExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, csvRecords(), true); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	raw := buf.Bytes()
	// UTF-16LE byte order mark
	if len(raw) < 2 || raw[0] != 0xFF || raw[1] != 0xFE {
		t.Fatalf("expected UTF-16LE BOM, got % x", raw[:2])
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		t.Fatalf("decode utf-16: %v", err)
	}

	text := string(decoded)
	if !strings.Contains(text, "name\temail\tphone") {
		t.Errorf("expected tab separated header, got %q", text)
	}
	if !strings.Contains(text, "Jan Jansen") {
		t.Error("expected visitor row in decoded output")
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, false); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if strings.TrimRight(buf.String(), "\n") != "name,email,phone,company,host,reason,checked_in_at,checked_out_at,status" {
		t.Errorf("expected header only, got %q", buf.String())
	}
}
