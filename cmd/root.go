package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options carries the dependencies every command needs. They are constructed
// once in main and passed down explicitly.
type Options struct {
	Log        *zap.Logger
	ConfigPath string
}

func newRootCmd(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "hhiwi",
		Short: "Generates the monthly Arbeitszeitdokumentation from Harvest",
		Long: `hhiwi pulls time entries from the Harvest time-tracking API and renders
them as a filled-in monthly working-time documentation sheet (SVG + PDF),
keeping an archive of past months for carry-over accounting.`,
	}
	root.AddCommand(newAzdCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute is the entry point called from main.
func Execute(opts Options) {
	if err := newRootCmd(opts).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
