package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/enunezf/routinesync/internal/adapters/filesystem"
	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/core/services"
)

var (
	// Plan command flags
	planFormat     string
	planShowDiff   bool
	planOutputFile string
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the migration script without executing it",
	Long: `Compare every object file with the database and print the migration script
that sync would run. Nothing is executed.

Examples:
  # Print the report and the script
  routinesync plan -s localhost -d app -u sa -p secret

  # Show what changed in every modified object
  routinesync plan -s localhost -d app -u sa -p secret --diff

  # Machine readable summary, script written to a file
  routinesync plan -s localhost -d app -u sa -p secret --format yaml --script migration.sql`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text or yaml")
	planCmd.Flags().BoolVar(&planShowDiff, "diff", false, "Show a line diff for changed objects")
	planCmd.Flags().StringVar(&planOutputFile, "script", "", "Write the migration script to this file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	if planFormat != "text" && planFormat != "yaml" {
		return errors.Errorf("unknown format %q", planFormat)
	}

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	adapter, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer adapter.Close()

	// The text report would corrupt yaml on stdout
	reportOut := cmd.OutOrStdout()
	if planFormat == "yaml" {
		reportOut = cmd.ErrOrStderr()
	}

	pipeline := services.NewPipeline(
		adapter.Objects(),
		filesystem.NewOsSource(cfg.ObjectsDir, cfg.Extension, logger),
		nil,
		services.WithOutput(reportOut),
		services.WithLogger(logger),
	)

	set, err := pipeline.Plan(ctx)
	if err != nil {
		return err
	}

	if planOutputFile != "" && set.HasChanges() {
		if err := afero.WriteFile(afero.NewOsFs(), planOutputFile, []byte(set.Script), 0644); err != nil {
			return errors.Wrap(err, "failed to write migration script")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\033[32m✓ Migration script written to %s\033[0m\n", planOutputFile)
	}

	if planFormat == "yaml" {
		return writeYAMLReport(cmd.OutOrStdout(), set, planOutputFile == "")
	}

	if planShowDiff {
		writeDiffs(cmd.OutOrStdout(), set)
	}
	if set.HasChanges() && planOutputFile == "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), set.Script)
	}
	return nil
}

func writeYAMLReport(w io.Writer, set *domain.ChangeSet, includeScript bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(set.Report(includeScript)); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return enc.Close()
}

func writeDiffs(w io.Writer, set *domain.ChangeSet) {
	for _, c := range set.Changes {
		if c.Object.IsNew {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\033[1m@@ %s (%s) @@\033[0m\n", c.Object.Name, c.Object.Kind)
		for _, line := range strings.SplitAfter(services.LineDiff(c.CurrentText, c.Object.Text), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Fprint(w, "\033[32m"+strings.TrimSuffix(line, "\n")+"\033[0m\n")
			case strings.HasPrefix(line, "-"):
				fmt.Fprint(w, "\033[31m"+strings.TrimSuffix(line, "\n")+"\033[0m\n")
			default:
				fmt.Fprint(w, line)
			}
		}
	}
}
