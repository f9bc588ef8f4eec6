// Command csvedit serves the CSV editor panel and converts CSV files from the
// command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "csvedit",
		Short: "Spreadsheet-style CSV editor panel",
		Long: `csvedit turns CSV text into an editable table and back.

  csvedit serve      Start the panel API and wait for the host to attach
  csvedit convert    Re-write a CSV file with different write options`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newConvertCmd())
	return root
}
