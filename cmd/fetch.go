package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/playsift/levelscope/internal/source"
	"github.com/playsift/levelscope/internal/store"
	"github.com/playsift/levelscope/internal/table"
)

var (
	fetchView string
	fetchFrom string
	fetchTo   string
	fetchName string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Export a view from the BI server and cache it in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchView == "" {
			return fmt.Errorf("--view is required")
		}
		client, err := newExportClient()
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}

		data, err := client.Export(cmd.Context(), fetchView, source.ExportOptions{From: fetchFrom, To: fetchTo})
		if err != nil {
			return fmt.Errorf("export view %s: %w", fetchView, err)
		}

		// Parse once to count rows and catch a broken export before caching.
		t, err := table.ReadCSVBytes(data)
		if err != nil {
			return fmt.Errorf("export is not valid CSV: %w", err)
		}

		name := fetchName
		if name == "" {
			name = fmt.Sprintf("%s-%s.csv", fetchView, time.Now().Format("2006-01-02"))
		}
		if err := st.Upload(name, data); err != nil {
			return err
		}
		if err := recordExport(st, name, fetchView, len(t.Rows)); err != nil {
			return err
		}
		fmt.Printf("Cached %s (%d rows) from view %s\n", name, len(t.Rows), fetchView)
		return nil
	},
}

func recordExport(st *store.Local, name, view string, rows int) error {
	m, err := store.LoadManifest(st.Dir())
	if err != nil {
		return err
	}
	m.Add(name, view, rows)
	return m.Save()
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchView, "view", "", "BI view identifier to export")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date filter (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date filter (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchName, "name", "", "blob name for the cached export (default <view>-<date>.csv)")
}
