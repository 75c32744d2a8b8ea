package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"stackc/internal/driver"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

var dumpCmd = &cobra.Command{
	Use:   "dump <artifact.mp>",
	Short: "Print the listing stored in an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := driver.ReadArtifact(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		header := fmt.Sprintf("%s: %d functions, %d classes", args[0], len(art.Functions), len(art.Classes))
		if art.Digest != "" {
			header += " [" + shortDigest(art.Digest) + "]"
		}
		fmt.Fprintln(out, headerStyle.Render(header))
		return art.WriteListing(out)
	},
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
