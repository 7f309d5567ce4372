// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrEmptyCSV is returned when a data file has no header row.
var ErrEmptyCSV = errors.New("data file has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads delimited text whose first row names the fields. Header names
// are matched case-insensitively against the PaperRecord fields and unknown
// columns are ignored. Blank lines and rows without any non-empty field are
// skipped; rows shorter than the header leave the missing fields empty.
//
// Any malformed row fails the whole file so the caller can treat the file as
// contributing no records.
func Parse(r io.Reader) ([]types.PaperRecord, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.PaperRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing row: %w", err)
		}
		rec := types.PaperRecord{
			Journal:  field(row, "journal"),
			Year:     field(row, "year"),
			Title:    field(row, "title"),
			Authors:  field(row, "authors"),
			Abstract: field(row, "abstract"),
			URL:      strings.TrimSpace(field(row, "url")),
		}
		if rec.IsEmpty() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
