package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mbarreto/botcore/pkg/template"
)

// createTemplateCommand creates the template command
func createTemplateCommand(flags *TemplateFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Create service configuration templates",
		Long: `Create starter [[services]] configuration entries for common
dependency types. Snippets can be pasted into the TOML config or
written to a file with --output.

Supported template types:
  llm       - Local model server (ollama)
  api       - HTTP service with a health endpoint
  database  - SQL database reachable by DSN
  static    - Dependency without a live endpoint

Examples:
  botcore template --type=llm --name=ollama
  botcore template --type=database --name=messages
  botcore template --type=api --output=./backend.toml
  botcore template --type=static --name=speech --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(flags)
		},
	}

	cmd.Flags().StringVar(&flags.Type, "type", "", "template type (required): llm, api, database, static")
	cmd.Flags().StringVar(&flags.Name, "name", "", "service name for the entry (defaults to type-sample)")
	cmd.Flags().StringVar(&flags.Output, "output", "", "output file path (prints to stdout when empty)")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing output file")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "emit JSON instead of a TOML snippet")

	if err := cmd.MarkFlagRequired("type"); err != nil {
		panic(err)
	}

	return cmd
}

func runTemplate(flags *TemplateFlags) error {
	name := flags.Name
	if name == "" {
		name = flags.Type + "-sample"
	}

	g := template.NewGenerator()
	tt := template.TemplateType(strings.ToLower(flags.Type))

	var data []byte
	var err error
	if flags.JSON {
		data, err = g.GenerateJSON(tt, name)
	} else {
		data, err = g.GenerateTOML(tt, name)
	}
	if err != nil {
		return err
	}

	if flags.Output == "" {
		fmt.Println(string(data))
		return nil
	}

	if !flags.Force {
		if _, err := os.Stat(flags.Output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", flags.Output)
		}
	}
	if dir := filepath.Dir(flags.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	if err := os.WriteFile(flags.Output, data, 0o600); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", flags.Output)
	return nil
}
