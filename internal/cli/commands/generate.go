package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var (
		all     bool
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "generate [notebook...]",
		Short: "Generate SQL scripts from registered notebooks",
		Long: `Resolve each notebook's cells in dependency order, apply idempotency
rewrites, and assemble the provenance-annotated SQL script.

Regenerating an unchanged notebook produces byte-identical output.`,
		Example: `  # Generate one notebook to stdout
  inkwell generate bootstrap

  # Generate several notebooks
  inkwell generate bootstrap console

  # Generate everything registered
  inkwell generate --all

  # Write the script to a file
  inkwell generate bootstrap --out bootstrap.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("no notebooks named (use --all to generate every registered notebook)")
			}
			return runGenerate(cmd, args, all, outPath)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Generate every registered notebook")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the script to a file instead of stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, names []string, all bool, outPath string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if all {
		names = nil
	}
	scripts, err := cmdCtx.Engine.GenerateAll(cmd.Context(), names...)
	if err != nil {
		return err
	}

	// Deterministic output order regardless of generation concurrency.
	ordered := make([]string, 0, len(scripts))
	for name := range scripts {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	for _, script := range scripts {
		for _, w := range script.Warnings {
			cmdCtx.Logger.Warn("generation warning", "notebook", script.Notebook, "warning", w)
		}
	}

	var text string
	if cmdCtx.Cfg.OutputFormat == "json" {
		out := make([]generateOutput, 0, len(ordered))
		for _, name := range ordered {
			out = append(out, newGenerateOutput(scripts[name]))
		}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		text = string(encoded) + "\n"
	} else {
		var b strings.Builder
		for _, name := range ordered {
			b.WriteString(scripts[name].Text())
		}
		text = b.String()
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		cmdCtx.Logger.Info("script written", "path", outPath, "notebooks", len(ordered))
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

// generateOutput is the JSON shape of one generated notebook.
type generateOutput struct {
	Notebook   string   `json:"notebook"`
	Order      []string `json:"order"`
	Statements int      `json:"statements"`
	Warnings   []string `json:"warnings,omitempty"`
	SQL        string   `json:"sql"`
}

func newGenerateOutput(s *notebook.GeneratedScript) generateOutput {
	return generateOutput{
		Notebook:   s.Notebook,
		Order:      s.Order,
		Statements: len(s.Statements),
		Warnings:   s.Warnings,
		SQL:        s.Text(),
	}
}
