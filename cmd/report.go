package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/playsift/levelscope/internal/export"
	"github.com/playsift/levelscope/internal/report"
	"github.com/playsift/levelscope/internal/store"
	"github.com/playsift/levelscope/internal/table"
)

var (
	repInput       string
	repFormat      string
	repOut         string
	repSettingsDir string
)

var reportCmd = &cobra.Command{
	Use:   "report <report-name>",
	Short: "Generate a named report from a cached export",
	Long: "Generate a named report from a cached export blob or a local CSV file.\n" +
		"Available reports: " + strings.Join(report.Names(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		gen, ok := report.Get(name)
		if !ok {
			return fmt.Errorf("unknown report %q (available: %s)", name, strings.Join(report.Names(), ", "))
		}
		if repInput == "" {
			return fmt.Errorf("--input is required (blob name or CSV path)")
		}
		t, err := loadInput(repInput)
		if err != nil {
			return err
		}
		s, err := loadSettings(name)
		if err != nil {
			return err
		}
		out := gen(t, s)
		if len(out.Rows) == 0 {
			fmt.Fprintln(os.Stderr, "No data for this report")
		}

		switch repFormat {
		case "", "table", "markdown":
			text := export.Markdown(out, s)
			return writeOutput([]byte(text))
		case "csv":
			var b strings.Builder
			if err := export.WriteCSV(&b, out, s); err != nil {
				return err
			}
			return writeOutput([]byte(b.String()))
		default:
			return fmt.Errorf("unsupported --format %q (use table|markdown|csv)", repFormat)
		}
	},
}

// loadInput resolves --input as a store blob first, then a local file path.
func loadInput(input string) (*table.Table, error) {
	if st, err := openStore(); err == nil {
		if data, err := st.Download(input); err == nil {
			return table.ReadCSVBytes(data)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("input %q is neither a cached blob nor a readable file: %w", input, err)
	}
	return table.ReadCSVBytes(data)
}

func loadSettings(name string) (report.Settings, error) {
	dir := repSettingsDir
	if dir == "" && cfg != nil {
		dir = cfg.SettingsDir
	}
	return report.LoadSettings(dir, name)
}

func writeOutput(data []byte) error {
	if repOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(repOut, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", repOut)
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&repInput, "input", "", "cached blob name or local CSV path")
	reportCmd.Flags().StringVar(&repFormat, "format", "table", "output format: table|markdown|csv")
	reportCmd.Flags().StringVar(&repOut, "out", "", "write output to file instead of stdout")
	reportCmd.Flags().StringVar(&repSettingsDir, "settings-dir", "", "report settings directory (overrides config)")
}
