package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/recipecrawl.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".recipecrawl"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new recipecrawl configuration file",
		Long: `Initialize creates a new .recipecrawl configuration file in the current
directory.

The generated file includes:
- A commented seed list
- The default positive and negative classifier terms as a starting point
- Documentation for each section

Examples:
  # Create .recipecrawl in current directory
  recipecrawl init

  # Create config file at a specific path
  recipecrawl init -o myconfig.yaml

  # Force overwrite existing file
  recipecrawl init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/recipecrawl.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n\n", outputPath)
	fmt.Fprintln(out, "Edit this file to configure:")
	fmt.Fprintln(out, "  - Seed domains or URLs to crawl")
	fmt.Fprintln(out, "  - Positive terms marking recipe-related URLs")
	fmt.Fprintln(out, "  - Negative terms excluding uninteresting URLs")

	return nil
}
