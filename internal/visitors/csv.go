package visitors

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"visitor-registration/internal/storage"
)

// CSV export of the visitor log. Plain mode writes comma separated UTF-8.
// Excel mode writes UTF-16LE with BOM and tab separators, which Dutch Excel
// opens without an import wizard.

const csvTimeFormat = "2006-01-02 15:04:05"

var csvHeader = []string{"name", "email", "phone", "company", "host", "reason", "checked_in_at", "checked_out_at", "status"}

func WriteCSV(w io.Writer, records []storage.Visitor, excel bool) error {
	out := w
	if excel {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		tw := transform.NewWriter(w, enc)
		defer tw.Close()
		out = tw
	}

	writer := csv.NewWriter(out)
	if excel {
		writer.Comma = '\t'
	}

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, v := range records {
		checkedOut := ""
		if v.CheckedOutAt != nil {
			checkedOut = v.CheckedOutAt.Format(csvTimeFormat)
		}

		row := []string{
			v.Name,
			v.Email,
			v.Phone,
			v.Company,
			v.Host,
			v.Reason,
			v.CheckedInAt.Format(csvTimeFormat),
			checkedOut,
			string(v.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
