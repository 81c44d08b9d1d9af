package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/export"
)

var (
	exportFormatFlag string
	exportOutputFlag string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store as a shareable bundle",
	Long: `Export every saved request and environment as a single bundle that
'satchel import bundle' reads back. Without -o the bundle goes to
stdout.

Examples:
  satchel export
  satchel export --format yaml
  satchel export -o team-requests.yaml`,
	Args: cobra.NoArgs,
	RunE: exportCommand,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "", "Bundle format: json or yaml (default: json, or from the -o extension)")
	exportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write the bundle to a file instead of stdout")
}

func exportCommand(cmd *cobra.Command, args []string) error {
	var format export.Format
	if exportFormatFlag == "" && exportOutputFlag != "" {
		format = export.DetectFormat(exportOutputFlag)
	} else {
		parsed, err := export.ParseFormat(exportFormatFlag)
		if err != nil {
			return err
		}
		format = parsed
	}

	st, err := store.Open()
	if err != nil {
		return err
	}
	doc, err := st.Load()
	if err != nil {
		return err
	}

	data, err := export.Marshal(doc, format)
	if err != nil {
		return err
	}

	if exportOutputFlag == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if dir := filepath.Dir(exportOutputFlag); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fault.Storagef("cli.export", err, "creating %s", dir)
		}
	}
	if err := os.WriteFile(exportOutputFlag, data, 0o644); err != nil {
		return fault.Storagef("cli.export", err, "writing %s", exportOutputFlag)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d requests and %d environments to %s\n",
		len(doc.Requests), len(doc.Environments), exportOutputFlag)
	return nil
}
