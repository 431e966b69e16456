// Package export renders the budget summary artifacts: the delimited
// spreadsheet report, the share text, and the FCFA currency formatting they
// share. The report layout is consumed by external spreadsheet tooling and
// must not drift.
package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/core"
)

var frPrinter = message.NewPrinter(language.French)

// FormatCurrency renders amount with French digit grouping and the fixed
// FCFA suffix. Amounts are whole numbers in practice; fractional input is
// rendered with whatever precision the locale printer keeps.
func FormatCurrency(amount float64) string {
	return frPrinter.Sprint(number.Decimal(amount)) + " FCFA"
}

// Percentage renders amount as a share of total with one decimal place.
// A zero total yields "0%" for any amount, guarding the division.
func Percentage(amount, total float64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", amount/total*100)
}

// Filename is the destination name for a report exported at t.
func Filename(t time.Time) string {
	return "budget_" + t.Format("2006-01-02") + ".csv"
}

type reportRow struct {
	key   string
	label string
}

var reportSections = []struct {
	title string
	rows  []reportRow
}{
	{"REVENUS", []reportRow{
		{"salary", "Salaire net mensuel"},
		{"otherIncome", "Autres revenus"},
	}},
	{"DÉPENSES FIXES", []reportRow{
		{"rent", "Loyer"},
		{"utilities", "Électricité/Gaz/Eau"},
		{"internet", "Internet/Téléphone"},
		{"insurance", "Assurances"},
		{"transport", "Transport"},
	}},
	{"DÉPENSES VARIABLES", []reportRow{
		{"food", "Alimentation"},
		{"clothing", "Vêtements"},
		{"entertainment", "Loisirs"},
		{"health", "Santé"},
		{"otherExpenses", "Autres"},
	}},
	{"ÉPARGNE", []reportRow{
		{"emergency", "Épargne urgence"},
		{"projects", "Épargne projets"},
		{"investments", "Investissements"},
	}},
}

// CSVReport renders the full delimited report for the given field values.
// Rows are comma-joined, sections separated by blank lines; the per-row
// percentage is the field's share of total income. The layout is fixed.
func CSVReport(values map[string]string, totals core.BudgetTotals, t time.Time) string {
	lines := []string{
		"BUDGET MANAGER - FCFA",
		"Date: " + t.Format("02/01/2006"),
	}

	for _, section := range reportSections {
		lines = append(lines, "", section.title+",Montant (FCFA),Pourcentage")
		for _, row := range section.rows {
			amount := budget.ParseNumber(values[row.key])
			lines = append(lines, strings.Join([]string{
				row.label,
				rawOrZero(values[row.key]),
				Percentage(amount, totals.TotalIncome),
			}, ","))
		}
	}

	lines = append(lines,
		"",
		"RÉSUMÉ",
		"Total Revenus,"+FormatCurrency(totals.TotalIncome),
		"Total Dépenses,"+FormatCurrency(totals.TotalExpenses),
		"Solde Restant,"+FormatCurrency(totals.Remaining),
	)

	return strings.Join(lines, "\n")
}

// ShareText renders the human-readable summary with the fixed emoji
// template.
func ShareText(values map[string]string, totals core.BudgetTotals, t time.Time) string {
	v := func(key string) string { return rawOrZero(values[key]) }

	return `📊 MON BUDGET PERSONNEL - FCFA

💵 REVENUS:
• Salaire net: ` + v("salary") + ` FCFA
• Autres revenus: ` + v("otherIncome") + ` FCFA
• TOTAL REVENUS: ` + FormatCurrency(totals.TotalIncome) + `

🏠 DÉPENSES FIXES:
• Loyer: ` + v("rent") + ` FCFA
• Électricité/Gaz/Eau: ` + v("utilities") + ` FCFA
• Internet/Téléphone: ` + v("internet") + ` FCFA
• Assurances: ` + v("insurance") + ` FCFA
• Transport: ` + v("transport") + ` FCFA

🛒 DÉPENSES VARIABLES:
• Alimentation: ` + v("food") + ` FCFA
• Vêtements: ` + v("clothing") + ` FCFA
• Loisirs: ` + v("entertainment") + ` FCFA
• Santé: ` + v("health") + ` FCFA
• Autres: ` + v("otherExpenses") + ` FCFA

🏦 ÉPARGNE:
• Épargne d'urgence: ` + v("emergency") + ` FCFA
• Épargne projets: ` + v("projects") + ` FCFA
• Investissements: ` + v("investments") + ` FCFA

📈 RÉSUMÉ:
• Total Dépenses: ` + FormatCurrency(totals.TotalExpenses) + `
• Solde Restant: ` + FormatCurrency(totals.Remaining) + `

📅 Date: ` + t.Format("02/01/2006") + `
📱 Généré par Budget Manager`
}

// BudgetReport is a convenience that derives the totals itself.
func BudgetReport(values map[string]string, t time.Time) string {
	return CSVReport(values, budget.ComputeTotals(values), t)
}

func rawOrZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}
