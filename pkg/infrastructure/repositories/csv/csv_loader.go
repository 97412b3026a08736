package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding is the character encoding of an input file.
type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

// ParseEncoding accepts "utf-8", "utf8", "sjis", "shift_jis" and "cp932".
// The empty string is UTF-8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "sjis", "shift_jis", "shift-jis", "cp932":
		return ShiftJIS, nil
	default:
		return UTF8, fmt.Errorf("unknown encoding %q", s)
	}
}

// Options control how rows are read.
type Options struct {
	Delimiter rune
	HasHeader bool
	Encoding  Encoding
}

// DefaultOptions reads comma separated UTF-8 with a header row.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HasHeader: true, Encoding: UTF8}
}

// ParseDelimiter maps "comma", "tab", "semicolon" or a single character to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",", "comma":
		return ',', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

// Loader reads delimited rows for bulk import.
type Loader struct {
	opts Options
}

// NewLoader creates a loader. A zero delimiter means comma.
func NewLoader(opts Options) *Loader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Loader{opts: opts}
}

// LoadFile reads every data row of filename.
func (l *Loader) LoadFile(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	rows, err := l.Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return rows, nil
}

// Read returns the data rows of r with every field trimmed. Blank lines are
// dropped and the header row is skipped when configured. Rows may have
// differing column counts.
func (l *Loader) Read(r io.Reader) ([][]string, error) {
	if l.opts.Encoding == ShiftJIS {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.Comma = l.opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, record)
	}

	if l.opts.HasHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
