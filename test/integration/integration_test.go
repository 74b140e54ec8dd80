package integration

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

// loadTestConfiguration loads the shared test configuration exactly as the
// CLI does before calculating.
func loadTestConfiguration(t *testing.T) *config.Configuration {
	t.Helper()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	return conf
}

// TestMainIntegrationBaseline tests that the configured scenario produces the
// baseline figures
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()
	conf := loadTestConfiguration(t)

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Fatalf("unexpected configuration warnings: %v", warnings)
	}

	store, err := cache.New(conf.Cache, logger)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	result, cached := store.Calculate(context.Background(), mortgage.NewCalculator(logger), conf.Scenario)
	if cached {
		t.Fatal("expected first calculation to miss the cache")
	}

	baselineChecks := []struct {
		name        string
		actual      float64
		expectedVal float64
	}{
		{"total cost", result.TotalCost, 267500},
		{"loan amount", result.LoanAmount, 217500},
		{"monthly payment", result.MonthlyPayment, 1268.75},
		{"balance after 10 years", result.Series[9].RemainingBalance, 137432.92},
		{"total interest", result.TotalInterest(), 105537.87},
	}
	for _, check := range baselineChecks {
		if math.Abs(check.actual-check.expectedVal) > 0.01 {
			t.Errorf("%s: expected %.2f, got %.2f", check.name, check.expectedVal, check.actual)
		}
	}

	if year := result.PayoffYear(); year != 22 {
		t.Errorf("expected payoff in year 22, got %d", year)
	}

	again, cached := store.Calculate(context.Background(), mortgage.NewCalculator(logger), conf.Scenario)
	if !cached {
		t.Error("expected second calculation to hit the cache")
	}
	if again.PayoffYear() != result.PayoffYear() {
		t.Errorf("cached result differs: payoff %d vs %d", again.PayoffYear(), result.PayoffYear())
	}
}

// TestCSVOutputFormat tests the CSV rendition of the configured scenario
func TestCSVOutputFormat(t *testing.T) {
	conf := loadTestConfiguration(t)

	var buf bytes.Buffer
	report := output.NewReport(nil, conf.Scenario, validation.ValidateScenario(conf.Scenario))
	if err := output.CsvFormat(&buf, report); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 23 {
		t.Fatalf("expected header plus 22 years, got %d lines", len(lines))
	}

	expectedHeaderParts := []string{`"year"`, `"Restschuld"`, `"Kumulierte Tilgung"`, `"Kumulierter Zinsanteil"`}
	for _, part := range expectedHeaderParts {
		if !strings.Contains(lines[0], part) {
			t.Errorf("CSV header missing expected part: %s", part)
		}
	}

	for i, line := range lines[1:] {
		parts := strings.Split(line, ",")
		if len(parts) != 4 {
			t.Errorf("CSV line should have 4 parts, got %d: %s", len(parts), line)
		}
		if !strings.HasPrefix(parts[0], `"`) {
			t.Errorf("CSV line %d should start with a quoted year: %s", i+1, line)
		}
	}

	if lines[len(lines)-1] != `"22","0.00","217500.00","105537.87"` {
		t.Errorf("unexpected final CSV line %s", lines[len(lines)-1])
	}
}

// TestPrettyOutputFormat tests the pretty print output
func TestPrettyOutputFormat(t *testing.T) {
	conf := loadTestConfiguration(t)
	formatter, err := conf.Formatter()
	if err != nil {
		t.Fatalf("Formatter() error = %v", err)
	}

	var buf bytes.Buffer
	report := output.NewReport(nil, conf.Scenario, nil)
	if err := output.PrettyFormat(&buf, report, formatter); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}

	out := buf.String()
	for _, expected := range []string{
		"Gesamtkosten    | 267.500,00 €",
		"Darlehenssumme  | 217.500,00 €",
		"Monatliche Rate | 1.268,75 €",
		"Schuldenfrei nach 22 Jahren",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("pretty output missing %q:\n%s", expected, out)
		}
	}
}

// TestExampleConfiguration checks that the shipped example configuration
// loads and describes a valid scenario
func TestExampleConfiguration(t *testing.T) {
	conf, err := config.LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("unexpected configuration warnings: %v", warnings)
	}
	if conf.Scenario != mortgage.DefaultScenario() {
		t.Errorf("example scenario %+v differs from defaults", conf.Scenario)
	}
}
