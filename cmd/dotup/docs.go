package main

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed usage.md
var usageDoc string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the usage guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		rendered, err := renderMarkdown(usageDoc)
		if err != nil {
			// Fall back to the raw document rather than failing the command
			rendered = usageDoc
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

// renderMarkdown converts markdown to terminal output with glamour
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
