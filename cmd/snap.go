package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mindbot/pkg/screen"
)

var snapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Capture the configured regions once and save them as PNGs",
	Long: `snap grabs region1, region2 and the write region and saves each one to the
debug directory, so the region coordinates can be checked against the screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := screen.NewCapturer(cfg.DebugDir)
		shots := []struct {
			name   string
			region screen.Region
		}{
			{"region1.png", cfg.Region1},
			{"region2.png", cfg.Region2},
			{"write_region.png", cfg.WriteRegion},
		}
		for _, s := range shots {
			if _, err := c.CaptureAs(s.region, s.name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", s.region, filepath.Join(cfg.DebugDir, s.name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapCmd)
}
