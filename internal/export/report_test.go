package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/romaric67/bdget-app/internal/budget"
)

func testDate() time.Time {
	return time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
}

func sampleValues() map[string]string {
	return map[string]string{
		"salary": "200000",
		"rent":   "50000",
		"food":   "30000",
	}
}

func TestFormatCurrencySuffix(t *testing.T) {
	if got := FormatCurrency(500); got != "500 FCFA" {
		t.Fatalf("FormatCurrency(500) = %q", got)
	}
	if got := FormatCurrency(0); got != "0 FCFA" {
		t.Fatalf("FormatCurrency(0) = %q", got)
	}

	// Grouping separators vary by CLDR version, so assert on the digits
	// and the suffix rather than the exact spacing.
	got := FormatCurrency(1234567)
	if !strings.HasSuffix(got, " FCFA") {
		t.Fatalf("FormatCurrency(1234567) = %q, missing suffix", got)
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, got)
	if digits != "1234567" {
		t.Fatalf("FormatCurrency(1234567) = %q, digits %q", got, digits)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		amount, total float64
		want          string
	}{
		{50000, 200000, "25.0%"},
		{200000, 200000, "100.0%"},
		{1, 3, "33.3%"},
		{0, 200000, "0.0%"},
		{500, 0, "0%"}, // zero total guards the division
		{0, 0, "0%"},
	}
	for _, tt := range tests {
		if got := Percentage(tt.amount, tt.total); got != tt.want {
			t.Errorf("Percentage(%v, %v) = %q, want %q", tt.amount, tt.total, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(testDate()); got != "budget_2026-03-15.csv" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestCSVReportLayout(t *testing.T) {
	values := sampleValues()
	totals := budget.ComputeTotals(values)
	report := CSVReport(values, totals, testDate())
	lines := strings.Split(report, "\n")

	want := []string{
		"BUDGET MANAGER - FCFA",
		"Date: 15/03/2026",
		"",
		"REVENUS,Montant (FCFA),Pourcentage",
		"Salaire net mensuel,200000,100.0%",
		"Autres revenus,0,0.0%",
		"",
		"DÉPENSES FIXES,Montant (FCFA),Pourcentage",
		"Loyer,50000,25.0%",
		"Électricité/Gaz/Eau,0,0.0%",
		"Internet/Téléphone,0,0.0%",
		"Assurances,0,0.0%",
		"Transport,0,0.0%",
		"",
		"DÉPENSES VARIABLES,Montant (FCFA),Pourcentage",
		"Alimentation,30000,15.0%",
		"Vêtements,0,0.0%",
		"Loisirs,0,0.0%",
		"Santé,0,0.0%",
		"Autres,0,0.0%",
		"",
		"ÉPARGNE,Montant (FCFA),Pourcentage",
		"Épargne urgence,0,0.0%",
		"Épargne projets,0,0.0%",
		"Investissements,0,0.0%",
		"",
		"RÉSUMÉ",
		"Total Revenus," + FormatCurrency(200000),
		"Total Dépenses," + FormatCurrency(80000),
		"Solde Restant," + FormatCurrency(120000),
	}
	if len(lines) != len(want) {
		t.Fatalf("report has %d lines, want %d:\n%s", len(lines), len(want), report)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestCSVReportEmptyForm(t *testing.T) {
	values := map[string]string{}
	report := CSVReport(values, budget.ComputeTotals(values), testDate())

	// Empty fields render as literal 0, and with zero income every
	// percentage collapses to the guarded "0%".
	if !strings.Contains(report, "Salaire net mensuel,0,0%") {
		t.Fatalf("empty salary row missing:\n%s", report)
	}
	if !strings.Contains(report, "Total Revenus,0 FCFA") {
		t.Fatalf("zero income summary missing:\n%s", report)
	}
}

func TestShareTextContents(t *testing.T) {
	values := sampleValues()
	totals := budget.ComputeTotals(values)
	text := ShareText(values, totals, testDate())

	for _, want := range []string{
		"📊 MON BUDGET PERSONNEL - FCFA",
		"• Salaire net: 200000 FCFA",
		"• Autres revenus: 0 FCFA",
		"• TOTAL REVENUS: " + FormatCurrency(200000),
		"• Loyer: 50000 FCFA",
		"• Alimentation: 30000 FCFA",
		"• Épargne d'urgence: 0 FCFA",
		"• Total Dépenses: " + FormatCurrency(80000),
		"• Solde Restant: " + FormatCurrency(120000),
		"📅 Date: 15/03/2026",
		"📱 Généré par Budget Manager",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("share text missing %q:\n%s", want, text)
		}
	}
}

func TestFileSinkWritesAndShares(t *testing.T) {
	dir := t.TempDir()
	var shared string
	sink := NewFileSink(dir, func(_ context.Context, path string) error {
		shared = path
		return nil
	}, nil)

	path, err := sink.Export(context.Background(), "hello", testDate())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != "budget_2026-03-15.csv" {
		t.Fatalf("unexpected path %q", path)
	}
	if shared != path {
		t.Fatalf("share got %q, want %q", shared, path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("file content %q err %v", data, err)
	}
}

func TestFileSinkKeepsFileOnShareFailure(t *testing.T) {
	dir := t.TempDir()
	wantErr := errors.New("no share target")
	sink := NewFileSink(dir, func(context.Context, string) error { return wantErr }, nil)

	path, err := sink.Export(context.Background(), "report", testDate())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected share error, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("exported file should survive share failure: %v", statErr)
	}
}
