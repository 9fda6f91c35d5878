package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells income from expense. It mirrors the sign of the amount and
// is stored explicitly so it can be filtered without parsing amounts.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// DirectionOf derives the direction from a signed amount: negative is an
// expense, zero and positive are income.
func DirectionOf(amount decimal.Decimal) Direction {
	if amount.IsNegative() {
		return DirectionExpense
	}
	return DirectionIncome
}

// Source records how a transaction entered the ledger.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// AccountKey identifies the account a transaction belongs to.
type AccountKey string

const (
	AccountInter         AccountKey = "inter"
	AccountMercadoPago   AccountKey = "mercado_pago"
	AccountInterEmpresas AccountKey = "inter_empresas"
)

// Accounts lists the built-in account keys.
var Accounts = []AccountKey{AccountInter, AccountMercadoPago, AccountInterEmpresas}

// Category represents a category row.
type Category struct {
	ID   string
	Name string
	Kind Direction
}

// Rule maps a case-insensitive substring of a description to a category.
// Seq is the insertion order and breaks priority ties.
type Rule struct {
	Seq        int64
	ID         string
	Pattern    string
	CategoryID string
	Priority   int
	Enabled    bool
}

// Transaction represents a ledger row. Only DescriptionEnc carries secret
// content; every other field is stored in clear for range and sum queries.
type Transaction struct {
	ID             int64
	DedupKey       string
	Date           string // YYYY-MM-DD
	Amount         decimal.Decimal
	Direction      Direction
	CategoryID     *string
	Account        AccountKey
	Source         Source
	DescriptionEnc string
	RawBalance     decimal.NullDecimal
	ReferenceID    *string
	CreatedAt      time.Time
}

// MonthConfig holds the saving goal and per-category budgets of a month.
// Budgets only contains limits greater than zero.
type MonthConfig struct {
	Month      string
	SavingGoal decimal.Decimal
	Budgets    map[string]decimal.Decimal
}
