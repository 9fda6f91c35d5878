// Package statement turns bank and payment-processor exports into candidate
// ledger transactions. Each format is a Parser selected by the header line it
// recognises; a Registry holds the known formats.
package statement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/database/repository"
)

// ErrFormatUnrecognized is returned when no registered parser recognises the
// input.
var ErrFormatUnrecognized = errors.New("statement: format not recognized")

// Parser reads one export format.
type Parser interface {
	// Name is the human-readable format name.
	Name() string
	// Tag prefixes every composite dedup string the parser builds. Tags are
	// unique within a Registry so two formats never share a key space.
	Tag() string
	// Account is where rows go when the caller names none.
	Account() repository.AccountKey
	// Detect reports whether raw carries this format's header line.
	Detect(raw []byte) bool
	// Parse converts raw into candidates. An empty account selects the
	// format's default account.
	Parse(raw []byte, account repository.AccountKey) (Result, error)
}

// Candidate is a transaction parsed from a statement, before its description
// is encrypted and it is stored.
type Candidate struct {
	DedupKey    string
	Date        string
	Amount      decimal.Decimal
	Direction   repository.Direction
	CategoryID  *string
	Account     repository.AccountKey
	RawBalance  decimal.NullDecimal
	ReferenceID *string
}

// Transaction builds the ledger row for c with the given encrypted
// description.
func (c Candidate) Transaction(descriptionEnc string) repository.Transaction {
	return repository.Transaction{
		DedupKey:       c.DedupKey,
		Date:           c.Date,
		Amount:         c.Amount,
		Direction:      c.Direction,
		CategoryID:     c.CategoryID,
		Account:        c.Account,
		Source:         repository.SourceImport,
		DescriptionEnc: descriptionEnc,
		RawBalance:     c.RawBalance,
		ReferenceID:    c.ReferenceID,
	}
}

// Result is the output of Parser.Parse. Descriptions maps each candidate's
// dedup key to its plaintext description.
type Result struct {
	Format       string
	Candidates   []Candidate
	Descriptions map[string]string
	Skipped      int
}

// InvalidAmountError carries an amount that could not be parsed.
type InvalidAmountError struct {
	Raw string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Raw)
}

// InvalidDateError carries a date that could not be parsed.
type InvalidDateError struct {
	Raw string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Raw)
}

// RowError locates a fatal row error in the input.
type RowError struct {
	Format string
	Line   int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Format, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
