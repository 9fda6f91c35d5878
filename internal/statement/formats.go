package statement

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/database/repository"
)

// Format is a user-defined export layout read from a formats file.
//
//	[[format]]
//	name = "Nubank"
//	tag = "nu"
//	marker = "Data,Valor,Identificador"
//	delimiter = ","
//	date_column = "Data"
//	date_layout = "02/01/2006"
//	amount_column = "Valor"
//	description_columns = ["Descrição"]
//	key_columns = ["Identificador"]
//	account = "nubank"
type Format struct {
	Name                 string   `toml:"name"`
	Tag                  string   `toml:"tag"`
	Marker               string   `toml:"marker"`
	Delimiter            string   `toml:"delimiter"`
	DateColumn           string   `toml:"date_column"`
	DateLayout           string   `toml:"date_layout"`
	AmountColumn         string   `toml:"amount_column"`
	DecimalComma         bool     `toml:"decimal_comma"`
	AmountStrip          string   `toml:"amount_strip"`
	DescriptionColumns   []string `toml:"description_columns"`
	DescriptionSeparator string   `toml:"description_separator"`
	ReferenceColumn      string   `toml:"reference_column"`
	BalanceColumn        string   `toml:"balance_column"`
	KeyColumns           []string `toml:"key_columns"`
	Account              string   `toml:"account"`
}

type formatsFile struct {
	Format []Format `toml:"format"`
}

// LoadFormats reads format definitions from path.
func LoadFormats(path string) ([]Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read formats: %w", err)
	}
	return ParseFormats(data)
}

// ParseFormats parses TOML format definitions and validates each one.
func ParseFormats(data []byte) ([]Format, error) {
	var f formatsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse formats: %w", err)
	}
	for i, format := range f.Format {
		if err := format.validate(); err != nil {
			return nil, fmt.Errorf("format[%d]: %w", i, err)
		}
	}
	return f.Format, nil
}

func (f Format) validate() error {
	switch {
	case f.Name == "":
		return fmt.Errorf("name is required")
	case f.Tag == "" || strings.Contains(f.Tag, "|"):
		return fmt.Errorf("%q: tag is required and may not contain '|'", f.Name)
	case f.Marker == "":
		return fmt.Errorf("%q: marker is required", f.Name)
	case utf8.RuneCountInString(f.Delimiter) > 1:
		return fmt.Errorf("%q: delimiter must be a single character", f.Name)
	case f.DateColumn == "" || f.DateLayout == "":
		return fmt.Errorf("%q: date_column and date_layout are required", f.Name)
	case f.AmountColumn == "":
		return fmt.Errorf("%q: amount_column is required", f.Name)
	case f.Account == "":
		return fmt.Errorf("%q: account is required", f.Name)
	}
	return nil
}

// Parser builds the parser described by f.
func (f Format) Parser() Parser {
	comma := ';'
	if f.Delimiter != "" {
		comma, _ = utf8.DecodeRuneInString(f.Delimiter)
	}
	return &tabular{
		name:    f.Name,
		tag:     f.Tag,
		marker:  f.Marker,
		comma:   comma,
		account: repository.AccountKey(f.Account),
		row:     f.row,
	}
}

func (f Format) row(rec record, account repository.AccountKey) Row {
	rawDate, rawAmount := rec.get(f.DateColumn), rec.get(f.AmountColumn)
	if blank(rawDate) || blank(rawAmount) {
		return skip()
	}
	date, err := parseDate(rawDate, f.DateLayout)
	if err != nil {
		return fail(err)
	}
	amount, err := f.parseAmount(rawAmount)
	if err != nil {
		return fail(err)
	}
	rawBalance, err := optionalAmount(rec.get(f.BalanceColumn), f.parseAmount)
	if err != nil {
		return fail(err)
	}

	sep := f.DescriptionSeparator
	if sep == "" {
		sep = " - "
	}
	var parts []string
	for _, col := range f.DescriptionColumns {
		if v := strings.TrimSpace(rec.get(col)); v != "" {
			parts = append(parts, v)
		}
	}

	keyColumns := f.KeyColumns
	if len(keyColumns) == 0 {
		keyColumns = append([]string{f.DateColumn}, f.DescriptionColumns...)
		keyColumns = append(keyColumns, f.AmountColumn)
	}
	keyFields := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		keyFields[i] = rec.get(col)
	}

	return accept(Candidate{
		DedupKey:    compositeKey(f.Tag, keyFields...),
		Date:        date,
		Amount:      amount,
		Direction:   repository.DirectionOf(amount),
		Account:     account,
		RawBalance:  rawBalance,
		ReferenceID: optionalString(rec.get(f.ReferenceColumn)),
	}, strings.Join(parts, sep))
}

func (f Format) parseAmount(raw string) (decimal.Decimal, error) {
	s := raw
	for _, r := range f.AmountStrip {
		s = strings.ReplaceAll(s, string(r), "")
	}
	var d decimal.Decimal
	var err error
	if f.DecimalComma {
		d, err = ParseAmount(s)
	} else {
		d, err = parsePointAmount(s)
	}
	if err != nil {
		return decimal.Decimal{}, &InvalidAmountError{Raw: raw}
	}
	return d, nil
}
