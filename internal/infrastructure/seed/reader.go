// Package seed loads the store dataset (catalog, customers, deals and their
// usage) from CSV exports into the database.
package seed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is stripped from the start of a file when present
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const encodingProbeSize = 4096

// Row is one data line keyed by header name. Line is the 1-based line
// number in the file, the header being line 1.
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the trimmed value of a column, or "" when the column is absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty reports whether every value in the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Reader reads a headed CSV file row by row
type Reader struct {
	csv     *csv.Reader
	headers []string
	index   map[string]int
	line    int
}

// ReaderOption configures a Reader
type ReaderOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(d rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// NewReader strips a UTF-8 BOM, rejects other encodings and parses the header row
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	buf := bufio.NewReader(r)

	head, err := buf.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}

	probe, err := buf.Peek(encodingProbeSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(probe) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(probe)) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(cr)
	}

	rd := &Reader{csv: cr, index: make(map[string]int)}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// trimPartialRune drops a multi-byte rune cut off by the probe window
func trimPartialRune(b []byte) []byte {
	if len(b) < encodingProbeSize {
		return b
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}

func (r *Reader) readHeader() error {
	record, err := r.csv.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	r.headers = make([]string, 0, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		r.headers = append(r.headers, name)
		r.index[name] = i
	}
	if len(r.headers) == 0 {
		return ErrMissingHeader
	}
	r.line = 1
	return nil
}

// Headers returns the normalized header names in file order
func (r *Reader) Headers() []string {
	return r.headers
}

// MissingColumns returns the required columns absent from the header
func (r *Reader) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if _, ok := r.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Next returns the next row, or io.EOF after the last one
func (r *Reader) Next() (*Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("malformed line %d: %w", r.line, err)
	}

	row := &Row{Line: r.line, Data: make(map[string]string, len(r.headers))}
	for _, h := range r.headers {
		i := r.index[h]
		if i < len(record) {
			row.Data[h] = strings.TrimSpace(record[i])
		} else {
			row.Data[h] = ""
		}
	}
	return row, nil
}

// ReadAll returns every non-blank remaining row
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}
