package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playsift/levelscope/internal/store"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List cached exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		m, err := store.LoadManifest(st.Dir())
		if err != nil {
			return err
		}
		entries := m.Sorted()
		if len(entries) == 0 {
			blobs, err := st.List()
			if err != nil {
				return err
			}
			if len(blobs) == 0 {
				fmt.Println("No cached exports")
				return nil
			}
			for _, b := range blobs {
				fmt.Println(b)
			}
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  view=%s  rows=%d  fetched=%s\n",
				e.Name, e.ViewID, e.Rows, e.FetchedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}
