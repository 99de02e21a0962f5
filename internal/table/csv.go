package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Dialect selects how rows are written.
type Dialect string

const (
	// Legacy separates fields with ", " and never quotes. Values are expected to have
	// had their commas replaced already (see SanitizeValue).
	Legacy Dialect = "legacy"
	// RFC4180 writes standard comma separated, quoted-when-needed CSV.
	RFC4180 Dialect = "rfc4180"
)

// Delimiter is the Legacy field separator.
const Delimiter = ", "

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case Legacy, RFC4180:
		return d, nil
	case "":
		return Legacy, nil
	default:
		return "", fmt.Errorf("unknown CSV dialect: %q (must be 'legacy' or 'rfc4180')", s)
	}
}

// Encode writes every row of t to w.
func Encode(w io.Writer, t Table, d Dialect) error {
	switch d {
	case RFC4180:
		cw := csv.NewWriter(w)
		for _, row := range t.Rows {
			if err := cw.Write(row.Fields()); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	case Legacy, "":
		bw := bufio.NewWriter(w)
		for _, row := range t.Rows {
			if _, err := bw.WriteString(strings.Join(row.Fields(), Delimiter) + "\n"); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		return bw.Flush()
	default:
		return fmt.Errorf("unknown CSV dialect: %q", d)
	}
}

// Marshal returns the encoded table.
func Marshal(t Table, d Dialect) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SanitizeValue replaces literal commas with semicolons so a value can never be
// mistaken for a column break by consumers splitting on commas.
func SanitizeValue(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}

// FileName is the on-disk name of a table.
func (t Table) FileName() string {
	name := t.Key
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	return name
}
