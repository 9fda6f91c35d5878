package testdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one synthetic statement line.
type Row struct {
	Date        time.Time
	Kind        string
	Description string
	Reference   string
	Amount      decimal.Decimal
}

var merchants = []struct {
	kind, description string
	income            bool
}{
	{"Compra no debito", "UBER EATS BRASIL", false},
	{"Compra no debito", "UBER TRIP", false},
	{"Pix enviado", "MERCADO DO BAIRRO", false},
	{"Pagamento", "SPOTIFY", false},
	{"Pagamento", "NETFLIX.COM", false},
	{"Pix enviado", "FARMACIA SAO JOAO", false},
	{"Pix recebido", "FULANO DE TAL", true},
	{"Salario", "ACME LTDA", true},
}

// Rows returns n rows dated within the month of start, in date order. The
// same seed always yields the same rows.
func Rows(seed int64, n int, start time.Time) []Row {
	r := rand.New(rand.NewSource(seed))
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		m := merchants[r.Intn(len(merchants))]
		cents := int64(r.Intn(200000) + 100)
		amount := decimal.New(cents, -2)
		if !m.income {
			amount = amount.Neg()
		}
		rows = append(rows, Row{
			Date:        first.AddDate(0, 0, i*28/max(n, 1)),
			Kind:        m.kind,
			Description: fmt.Sprintf("%s %04d", m.description, i),
			Reference:   fmt.Sprintf("%d%06d", seed, i),
			Amount:      amount,
		})
	}
	return rows
}

// MercadoPagoCSV renders rows as a Mercado Pago account statement.
func MercadoPagoCSV(rows []Row, opening decimal.Decimal) []byte {
	var b strings.Builder
	b.WriteString("INITIAL_BALANCE;CREDITS;DEBITS;FINAL_BALANCE\n")
	b.WriteString(brl(opening) + ";0,00;0,00;" + brl(opening) + "\n\n")
	b.WriteString("RELEASE_DATE;TRANSACTION_TYPE;REFERENCE_ID;TRANSACTION_NET_AMOUNT;PARTIAL_BALANCE\n")
	balance := opening
	for _, row := range rows {
		balance = balance.Add(row.Amount)
		fmt.Fprintf(&b, "%s;%s;%s;%s;%s\n",
			row.Date.Format("02-01-2006"), row.Description, row.Reference, brl(row.Amount), brl(balance))
	}
	return []byte(b.String())
}

// InterCSV renders rows as a Banco Inter checking account export.
func InterCSV(rows []Row, opening decimal.Decimal) []byte {
	var b strings.Builder
	b.WriteString("Extrato Conta Corrente\r\nConta ;12345678\r\n\r\n")
	b.WriteString("Data Lançamento;Histórico;Descrição;Valor;Saldo\r\n")
	balance := opening
	for _, row := range rows {
		balance = balance.Add(row.Amount)
		fmt.Fprintf(&b, "%s;%s;%s;%s;%s\r\n",
			row.Date.Format("02/01/2006"), row.Kind, row.Description, brl(row.Amount), brl(balance))
	}
	return []byte(b.String())
}

// brl formats d the way Brazilian banks export it: "1.234,56".
func brl(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return sign + grouped.String() + "," + frac
}
