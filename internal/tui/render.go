package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/service"
)

// FormatMoney renders d in Brazilian notation: "R$ 1.234,56".
func FormatMoney(d decimal.Decimal, symbol string) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	if symbol == "" {
		return sign + grouped.String() + "," + frac
	}
	return sign + symbol + " " + grouped.String() + "," + frac
}

func amountCell(d decimal.Decimal, symbol string) string {
	s := FormatMoney(d, symbol)
	if d.IsNegative() {
		return expenseStyle.Render(s)
	}
	return incomeStyle.Render(s)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func categoryLabel(id *string, names map[string]string) string {
	if id == nil {
		return mutedStyle.Render("uncategorized")
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return *id
}

// Transactions renders a month listing.
func Transactions(views []service.TransactionView, names map[string]string, symbol string) string {
	if len(views) == 0 {
		return mutedStyle.Render("no transactions") + "\n"
	}
	t := newTable("ID", "DATE", "DESCRIPTION", "AMOUNT", "CATEGORY", "ACCOUNT", "SOURCE")
	for _, v := range views {
		desc := v.Description
		if v.Undecryptable {
			desc = warnStyle.Render(desc)
		}
		t.Row(
			strconv.FormatInt(v.ID, 10),
			v.Date,
			desc,
			amountCell(v.Amount, symbol),
			categoryLabel(v.CategoryID, names),
			string(v.Account),
			string(v.Source),
		)
	}
	return t.Render() + "\n"
}

// Totals renders income, expense and net on one line.
func Totals(tot service.Totals, symbol string) string {
	return fmt.Sprintf("%s %s   %s %s   %s %s\n",
		mutedStyle.Render("income"), incomeStyle.Render(FormatMoney(tot.Income, symbol)),
		mutedStyle.Render("expense"), expenseStyle.Render(FormatMoney(tot.Expense, symbol)),
		mutedStyle.Render("net"), amountCell(tot.Net, symbol))
}

// Summary renders a month summary with the per-category budget table.
func Summary(sum service.MonthSummary, symbol string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(sum.Month))
	b.WriteString("\n")
	b.WriteString(Totals(sum.Totals, symbol))
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		mutedStyle.Render("saving goal"), FormatMoney(sum.SavingGoal, symbol),
		mutedStyle.Render("remaining to spend"), amountCell(sum.Remaining, symbol))
	if sum.Uncategorized > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d uncategorized (%s spent)",
			sum.Uncategorized, FormatMoney(sum.UncategorizedSpent, symbol))))
		b.WriteString("\n")
	}
	if len(sum.Categories) == 0 {
		return b.String()
	}

	t := newTable("CATEGORY", "SPENT", "BUDGET", "LEFT")
	for _, c := range sum.Categories {
		name := c.Name
		if name == "" {
			name = c.CategoryID
		}
		budget, left := mutedStyle.Render("-"), mutedStyle.Render("-")
		if c.Budget.Valid {
			budget = FormatMoney(c.Budget.Decimal, symbol)
			left = amountCell(c.Budget.Decimal.Sub(c.Spent), symbol)
		}
		t.Row(name, FormatMoney(c.Spent, symbol), budget, left)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func Categories(cats []repository.Category) string {
	t := newTable("ID", "NAME", "KIND")
	for _, c := range cats {
		kind := string(c.Kind)
		if c.Kind == repository.DirectionIncome {
			kind = incomeStyle.Render(kind)
		} else {
			kind = expenseStyle.Render(kind)
		}
		t.Row(c.ID, c.Name, kind)
	}
	return t.Render() + "\n"
}

func Rules(list []repository.Rule, names map[string]string) string {
	if len(list) == 0 {
		return mutedStyle.Render("no rules") + "\n"
	}
	t := newTable("ID", "PATTERN", "CATEGORY", "PRIORITY", "ENABLED")
	for _, r := range list {
		enabled := incomeStyle.Render("yes")
		if !r.Enabled {
			enabled = mutedStyle.Render("no")
		}
		category := r.CategoryID
		t.Row(r.ID, r.Pattern, categoryLabel(&category, names), strconv.Itoa(r.Priority), enabled)
	}
	return t.Render() + "\n"
}

// ImportResult renders the outcome line of an import.
func ImportResult(res service.ImportResult) string {
	return fmt.Sprintf("%s %s into %s: %s inserted, %s duplicated, %d skipped, %d categorized\n",
		titleStyle.Render("imported"), res.Format, res.Account,
		incomeStyle.Render(strconv.Itoa(res.Inserted)),
		infoStyle.Render(strconv.Itoa(res.Duplicated)),
		res.Skipped, res.Categorized)
}

// Preview renders the rows an import would store.
func Preview(p service.ImportPreview, names map[string]string, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d rows, %d skipped\n", titleStyle.Render("preview"), p.Format, p.Total, p.Skipped)
	if len(p.Rows) == 0 {
		return b.String()
	}
	t := newTable("DATE", "DESCRIPTION", "AMOUNT", "CATEGORY", "KEY")
	for _, r := range p.Rows {
		t.Row(r.Date, r.Description, amountCell(r.Amount, symbol), categoryLabel(r.CategoryID, names), mutedStyle.Render(r.DedupKey))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(p.Rows) < p.Total {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", p.Total-len(p.Rows))))
		b.WriteString("\n")
	}
	return b.String()
}
