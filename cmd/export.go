package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/playsift/levelscope/internal/export"
	"github.com/playsift/levelscope/internal/report"
)

var (
	expInput   string
	expReports []string
	expOut     string
	expToStore string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an XLSX workbook with one sheet per report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if expInput == "" {
			return fmt.Errorf("--input is required (blob name or CSV path)")
		}
		if expOut == "" && expToStore == "" {
			return fmt.Errorf("one of --out or --to-store is required")
		}
		names := expReports
		if len(names) == 0 {
			names = report.Names()
		}
		t, err := loadInput(expInput)
		if err != nil {
			return err
		}

		var sheets []export.Sheet
		for _, name := range names {
			gen, ok := report.Get(name)
			if !ok {
				return fmt.Errorf("unknown report %q (available: %s)", name, strings.Join(report.Names(), ", "))
			}
			s, err := loadSettings(name)
			if err != nil {
				return err
			}
			sheets = append(sheets, export.Sheet{Name: sheetName(name), Table: gen(t, s), Settings: s})
		}

		if expOut != "" {
			if err := export.WriteWorkbook(expOut, sheets); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d sheets)\n", expOut, len(sheets))
		}
		if expToStore != "" {
			st, err := openStore()
			if err != nil {
				return err
			}
			data, err := export.WorkbookBytes(sheets)
			if err != nil {
				return err
			}
			if err := st.Upload(expToStore, data); err != nil {
				return err
			}
			fmt.Printf("Uploaded %s (%d sheets)\n", expToStore, len(sheets))
		}
		return nil
	},
}

// sheetName converts a report identifier to a sheet title ("ab-diff" ->
// "Ab Diff"), keeping inside the XLSX 31-char sheet name limit.
func sheetName(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expInput, "input", "", "cached blob name or local CSV path")
	exportCmd.Flags().StringSliceVar(&expReports, "reports", nil, "report names to include (default all)")
	exportCmd.Flags().StringVar(&expOut, "out", "", "XLSX output path")
	exportCmd.Flags().StringVar(&expToStore, "to-store", "", "also upload the workbook to the store under this blob name")
}
