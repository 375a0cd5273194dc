package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/playsift/levelscope/internal/report"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or initialize report settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show <report-name>",
	Short: "Show the effective settings for a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := report.Get(name); !ok {
			return fmt.Errorf("unknown report %q (available: %s)", name, strings.Join(report.Names(), ", "))
		}
		s, err := loadSettings(name)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		fmt.Print(string(b))
		return nil
	},
}

var settingsInitCmd = &cobra.Command{
	Use:   "init <report-name>",
	Short: "Write the default settings file for a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := report.Get(name); !ok {
			return fmt.Errorf("unknown report %q (available: %s)", name, strings.Join(report.Names(), ", "))
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		dir := repSettingsDir
		if dir == "" {
			dir = c.SettingsDir
		}
		if err := report.SaveSettings(dir, name, report.DefaultSettings(name)); err != nil {
			return err
		}
		fmt.Printf("Wrote %s/%s.yaml\n", dir, name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.PersistentFlags().StringVar(&repSettingsDir, "settings-dir", "", "report settings directory (overrides config)")
}
