package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackc/internal/codegen"
	"stackc/internal/ir"
)

var metaCmd = &cobra.Command{
	Use:   "meta [flags] <unit>",
	Short: "Print class metadata of a unit",
	Long:  "Assemble a unit and print class ids, vtables, interface ids and field offsets.",
	Args:  cobra.ExactArgs(1),
	RunE:  metaExecution,
}

func init() {
	metaCmd.Flags().String("raw", "", "write the binary data segment to this file")
}

func metaExecution(cmd *cobra.Command, args []string) error {
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	m, _, err := ir.Load(args[0])
	if err != nil {
		return err
	}
	art, err := codegen.Assemble(cmd.Context(), m, codegen.Options{Target: manifest.Config.target()})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s: %d classes, %d interfaces", m.Name, len(art.Classes), len(art.Interfaces))))
	if err := art.WriteClasses(out); err != nil {
		return err
	}

	raw, err := cmd.Flags().GetString("raw")
	if err != nil {
		return err
	}
	if raw != "" {
		if err := os.WriteFile(raw, art.Data, 0o600); err != nil {
			return fmt.Errorf("write data segment: %w", err)
		}
	}
	return nil
}
