package statement

import (
	"strings"

	"github.com/jask/finvault/internal/database/repository"
)

// Mercado Pago account statement export.
const (
	mpMarker = "RELEASE_DATE;"

	mpDate      = "RELEASE_DATE"
	mpType      = "TRANSACTION_TYPE"
	mpReference = "REFERENCE_ID"
	mpAmount    = "TRANSACTION_NET_AMOUNT"
	mpBalance   = "PARTIAL_BALANCE"
	mpDateForm  = "2-1-2006"
)

// NewMercadoPago returns the Mercado Pago parser.
func NewMercadoPago() Parser {
	return &tabular{
		name:    "Mercado Pago",
		tag:     "mp",
		marker:  mpMarker,
		comma:   ';',
		account: repository.AccountMercadoPago,
		row:     mercadoPagoRow,
	}
}

func mercadoPagoRow(rec record, account repository.AccountKey) Row {
	rawDate, rawAmount := rec.get(mpDate), rec.get(mpAmount)
	if blank(rawDate) || blank(rawAmount) {
		return skip()
	}
	date, err := parseDate(rawDate, mpDateForm)
	if err != nil {
		return fail(err)
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return fail(err)
	}
	balance, err := optionalAmount(rec.get(mpBalance), ParseAmount)
	if err != nil {
		return fail(err)
	}

	reference := strings.TrimSpace(rec.get(mpReference))
	return accept(Candidate{
		DedupKey:    compositeKey("mp", reference, rawDate, rawAmount),
		Date:        date,
		Amount:      amount,
		Direction:   repository.DirectionOf(amount),
		Account:     account,
		RawBalance:  balance,
		ReferenceID: optionalString(reference),
	}, strings.TrimSpace(rec.get(mpType)))
}
