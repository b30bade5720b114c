// Package parser turns a tabular CSV document into candidate card records.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/kartica/internal/apperr"
	"github.com/starford/kartica/internal/models"
)

// Columns names the header cells holding each side of a card.
type Columns struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// DefaultColumns matches the published spreadsheet layout.
var DefaultColumns = Columns{Source: "English", Target: "Croatian"}

// Result holds the output of parsing a document.
type Result struct {
	Records []models.RawCard
	Header  bool // first row was consumed as a header
	Dropped int  // data rows discarded for a missing side
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads data as CSV. The first non-blank row is always consumed as
// the header. Cells matching a column name case-insensitively select that
// side; an unnamed side falls back to position (source first, target
// second, or the first column the other side did not take).
//
// Row numbers count data rows from zero, including rows that are dropped,
// so a record's Row is its position in the document body.
func Parse(data []byte, cols Columns) (*Result, error) {
	if cols.Source == "" {
		cols.Source = DefaultColumns.Source
	}
	if cols.Target == "" {
		cols.Target = DefaultColumns.Target
	}

	rows, err := readRows(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, err
	}
	res := &Result{Records: []models.RawCard{}}
	if len(rows) == 0 {
		return res, nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width < 2 {
		return nil, fmt.Errorf("%w: need at least two columns, got %d", apperr.ErrParse, width)
	}

	srcIdx, tgtIdx := locateColumns(rows[0], cols)
	res.Header = true
	rows = rows[1:]

	for i, row := range rows {
		rec := models.RawCard{
			Row:    i,
			Source: cell(row, srcIdx),
			Target: cell(row, tgtIdx),
		}.Trimmed()
		if !rec.Valid() {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func readRows(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// locateColumns inspects the header row. When only one side is named,
// the other side takes the first remaining column.
func locateColumns(header []string, cols Columns) (src, tgt int) {
	src, tgt = -1, -1
	for i, c := range header {
		name := strings.TrimSpace(c)
		switch {
		case src < 0 && strings.EqualFold(name, cols.Source):
			src = i
		case tgt < 0 && strings.EqualFold(name, cols.Target):
			tgt = i
		}
	}

	switch {
	case src < 0 && tgt < 0:
		return 0, 1
	case src < 0:
		src = firstOther(tgt)
	case tgt < 0:
		tgt = firstOther(src)
	}
	return src, tgt
}

func firstOther(taken int) int {
	if taken == 0 {
		return 1
	}
	return 0
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
