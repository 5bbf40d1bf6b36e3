// AngelaMos | 2026
// sheet.go

package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptySheet = errors.New("spreadsheet has no header row")

// Table is the first worksheet of a workbook with its header row indexed
// by case-insensitive column name.
type Table struct {
	Name   string
	header map[string]int
	Rows   [][]string
}

func Open(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return fromFile(f)
}

func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return fromFile(f)
}

func fromFile(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		key := normalize(name)
		if _, dup := header[key]; key != "" && !dup {
			header[key] = i
		}
	}

	return &Table{
		Name:   sheets[0],
		header: header,
		Rows:   rows[1:],
	}, nil
}

// Has reports whether any of the aliases names a column.
func (t *Table) Has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := t.header[normalize(a)]; ok {
			return true
		}
	}
	return false
}

// Value returns the first non-empty trimmed cell among the aliased columns.
func (t *Table) Value(row []string, aliases ...string) string {
	for _, a := range aliases {
		i, ok := t.header[normalize(a)]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
