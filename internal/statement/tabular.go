package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/digest"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and decodes Latin-1 exports, which some banks
// still produce, into UTF-8.
func normalize(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// findHeader returns the index of the first line whose trimmed text starts
// with marker, skipping any preamble the export puts above the table.
func findHeader(lines []string, marker string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), marker) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// record gives by-name access to one CSV row.
type record struct {
	index  map[string]int
	fields []string
}

// get returns the raw field under column, or "" when the row is short or the
// column is absent.
func (r record) get(column string) string {
	if column == "" {
		return ""
	}
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// tabular is a delimited export identified by a header marker. The built-in
// formats and TOML-defined ones are all tabular parsers that differ only in
// their row mapping.
type tabular struct {
	name    string
	tag     string
	marker  string
	comma   rune
	account repository.AccountKey
	row     func(rec record, account repository.AccountKey) Row
}

func (p *tabular) Name() string { return p.name }
func (p *tabular) Tag() string  { return p.tag }

func (p *tabular) Account() repository.AccountKey { return p.account }

func (p *tabular) Detect(raw []byte) bool {
	return findHeader(splitLines(normalize(raw)), p.marker) >= 0
}

func (p *tabular) Parse(raw []byte, account repository.AccountKey) (Result, error) {
	if account == "" {
		account = p.account
	}
	lines := splitLines(normalize(raw))
	start := findHeader(lines, p.marker)
	if start < 0 {
		return Result{}, fmt.Errorf("%s: header %q not found: %w", p.name, p.marker, ErrFormatUnrecognized)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	r.Comma = p.comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return Result{}, fmt.Errorf("%s: read header: %w", p.name, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	res := Result{Format: p.name, Descriptions: map[string]string{}}
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// an unterminated quote is reported at EOF; point at the row that opened it
				line = perr.StartLine
				if line == 0 {
					line = perr.Line
				}
			}
			return Result{}, &RowError{Format: p.name, Line: start + line, Err: err}
		}
		line, _ := r.FieldPos(0)

		out := p.row(record{index: index, fields: fields}, account)
		switch out.Kind {
		case RowSkipped:
			res.Skipped++
		case RowFailed:
			return Result{}, &RowError{Format: p.name, Line: start + line, Err: out.Err}
		case RowAccepted:
			res.Candidates = append(res.Candidates, out.Candidate)
			res.Descriptions[out.Candidate.DedupKey] = out.Description
		}
	}
	return res, nil
}

// compositeKey joins tag and the raw identifying fields, then fingerprints
// them. The tag prefix keeps formats from colliding.
func compositeKey(tag string, fields ...string) string {
	return digest.DedupKey(tag + "|" + strings.Join(fields, "|"))
}
