package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewUpsertsCommand creates the upserts command.
func NewUpsertsCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "upserts <notebook>",
		Short: "Generate content upsert statements for a notebook",
		Long: `Build the INSERT ... ON CONFLICT statements that persist a notebook's
cell contents into a storage table. Cells keyed by (notebook, cell) go to
the configured upsert table; file-upsert cells go to their target table
keyed by path.

Re-running the statements converges: one row per cell, no duplicates.`,
		Example: `  # Upserts for the bootstrap notebook into the default table
  inkwell upserts bootstrap

  # Target a different storage table
  inkwell upserts console --table sqlpage_files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpserts(cmd, args[0], outPath)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the statements to a file instead of stdout")

	return cmd
}

func runUpserts(cmd *cobra.Command, name, outPath string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stmts, err := cmdCtx.Engine.GenerateUpserts(cmd.Context(), name, cmdCtx.Cfg.UpsertTable)
	if err != nil {
		return err
	}

	if cmdCtx.Cfg.OutputFormat == "json" {
		type upsertOutput struct {
			Cell string `json:"cell"`
			SQL  string `json:"sql"`
		}
		out := make([]upsertOutput, 0, len(stmts))
		for _, s := range stmts {
			out = append(out, upsertOutput{Cell: s.Cell, SQL: s.SQL})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.SQL)
		b.WriteString("\n\n")
	}
	text := strings.TrimRight(b.String(), "\n") + "\n"

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		cmdCtx.Logger.Info("upserts written", "path", outPath, "statements", len(stmts))
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
