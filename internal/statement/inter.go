package statement

import (
	"strings"

	"github.com/jask/finvault/internal/database/repository"
)

// Banco Inter checking account export.
const (
	interMarker = "Data Lançamento;"

	interDate     = "Data Lançamento"
	interHistory  = "Histórico"
	interDetail   = "Descrição"
	interAmount   = "Valor"
	interBalance  = "Saldo"
	interDateForm = "2/1/2006"
)

// NewInter returns the Banco Inter parser.
func NewInter() Parser {
	return &tabular{
		name:    "Inter",
		tag:     "inter",
		marker:  interMarker,
		comma:   ';',
		account: repository.AccountInter,
		row:     interRow,
	}
}

func interRow(rec record, account repository.AccountKey) Row {
	rawDate, rawAmount := rec.get(interDate), rec.get(interAmount)
	if blank(rawDate) || blank(rawAmount) {
		return skip()
	}
	date, err := parseDate(rawDate, interDateForm)
	if err != nil {
		return fail(err)
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return fail(err)
	}
	balance, err := optionalAmount(rec.get(interBalance), ParseAmount)
	if err != nil {
		return fail(err)
	}

	history, detail := rec.get(interHistory), rec.get(interDetail)
	description := strings.TrimSpace(strings.TrimSpace(history) + " - " + strings.TrimSpace(detail))

	return accept(Candidate{
		DedupKey:   compositeKey("inter", rawDate, history, detail, rawAmount, rec.get(interBalance)),
		Date:       date,
		Amount:     amount,
		Direction:  repository.DirectionOf(amount),
		Account:    account,
		RawBalance: balance,
	}, description)
}
