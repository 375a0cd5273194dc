package format_test

import (
	"testing"

	"github.com/playsift/levelscope/internal/format"
)

func TestFormatPercentBothConventions(t *testing.T) {
	if got := format.Format("0.455", "3 Days Churn"); got != "45.50%" {
		t.Fatalf("ratio convention: got %q", got)
	}
	if got := format.Format("45.5", "3 Days Churn"); got != "45.50%" {
		t.Fatalf("percent convention: got %q", got)
	}
	if got := format.Format("12.5%", "Churn Rate"); got != "12.50%" {
		t.Fatalf("pre-suffixed percent: got %q", got)
	}
	if got := format.Format("-0.05", "Instant Churn"); got != "-5.00%" {
		t.Fatalf("negative ratio: got %q", got)
	}
}

func TestFormatNumbers(t *testing.T) {
	if got := format.Format("1200", "TotalUser"); got != "1200" {
		t.Fatalf("integer: got %q", got)
	}
	if got := format.Format("1,234", "TotalUser"); got != "1234" {
		t.Fatalf("thousands separator: got %q", got)
	}
	if got := format.Format("3.14159", "Score"); got != "3.14" {
		t.Fatalf("decimal: got %q", got)
	}
}

func TestFormatDatesPassThrough(t *testing.T) {
	if got := format.Format("2024-07-03", "Score"); got != "2024-07-03" {
		t.Fatalf("date-shaped value: got %q", got)
	}
	if got := format.Format("7/3/2024", "Install Date"); got != "7/3/2024" {
		t.Fatalf("date column: got %q", got)
	}
}

func TestFormatMissingAndRaw(t *testing.T) {
	if got := format.Format("", "Score"); got != "" {
		t.Fatalf("empty default: got %q", got)
	}
	if got := format.FormatWith("", "Score", format.Options{Missing: "-"}); got != "-" {
		t.Fatalf("empty with placeholder: got %q", got)
	}
	if got := format.Format("n/a", "Score"); got != "n/a" {
		t.Fatalf("non-numeric: got %q", got)
	}
}

func TestFormatPercentSignOnlyMarksItsOwnColumn(t *testing.T) {
	if got := format.Format("0.5", "Success (%)"); got != "50.00%" {
		t.Fatalf("%% column: got %q", got)
	}
	// columns without any percent marker stay plain numbers
	if got := format.Format("42", "Row Count"); got != "42" {
		t.Fatalf("plain column: got %q", got)
	}
	if got := format.Format("1200", "Total Users"); got != "1200" {
		t.Fatalf("plain column: got %q", got)
	}
}

func TestFormatCustomPercentColumn(t *testing.T) {
	opt := format.Options{PercentColumns: []string{"conversion"}}
	if got := format.FormatWith("0.5", "Conversion", opt); got != "50.00%" {
		t.Fatalf("custom percent column: got %q", got)
	}
}
