package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/drupal"
	"github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/tui"
)

// migrateFlags holds flags specific to the migrate command.
type migrateFlags struct {
	timeout    time.Duration
	clearCache bool
}

// migrationRow is the JSON shape of one migration result.
type migrationRow struct {
	Migration string  `json:"migration"`
	File      string  `json:"file"`
	Outcome   string  `json:"outcome"`
	Failed    int     `json:"failed"`
	Seconds   float64 `json:"seconds"`
}

func addMigrateCommand(root *cobra.Command, a *app) {
	flags := &migrateFlags{}
	cmd := &cobra.Command{
		Use:   "migrate <kind> <file> [<kind> <file>...]",
		Short: "Run ingest migrations through the admin UI",
		Long: `Take the site lock, log in, then submit each CSV file to its ingest migration in order and wait
for the completion banner. The first failure stops the run.

An error banner fails the migration at once unless every message in it matches
migration.benign_error_patterns. A done banner with failed rows is a partial
failure. Run 'idce2e kinds' to list the migration identifiers.

Examples:
  idce2e migrate idc_ingest_taxonomy_persons persons.csv
  idce2e migrate idc_ingest_new_collection c.csv idc_ingest_new_items items.csv`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument,
					"expected <kind> <file> pairs, got %d arguments", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMigrate(cmd, args, flags)
		},
	}
	cmd.Flags().DurationVar(&flags.timeout, "migration-timeout", 0, "deadline per migration (default migration.timeout)")
	cmd.Flags().BoolVar(&flags.clearCache, "clear-cache", false, "clear the site cache after the last migration")
	root.AddCommand(cmd)
}

// parseSteps pairs kind and file arguments.
func parseSteps(args []string) ([]drupal.MigrationStep, error) {
	steps := make([]drupal.MigrationStep, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		kind, err := drupal.ParseMigrationKind(args[i])
		if err != nil {
			return nil, errors.NewExitCode2Error(err)
		}
		steps = append(steps, drupal.MigrationStep{Kind: kind, File: args[i+1]})
	}
	return steps, nil
}

func (a *app) runMigrate(cmd *cobra.Command, args []string, flags *migrateFlags) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	e, err := a.newEnv(cmd)
	if err != nil {
		return err
	}

	timeout := flags.timeout
	if timeout <= 0 {
		timeout = e.cfg.MigrationTimeout()
	}

	unlock, err := a.svc.lockSite(e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer unlock()

	page, site, closeFn, err := a.loggedIn(e)
	if err != nil {
		return err
	}
	defer closeFn()

	results, runErr := drupal.NewRunner(page, site, e.driverOptions()...).RunAll(e.ctx, steps, timeout)
	printMigrations(e, results)
	if runErr != nil {
		return runErr
	}

	if flags.clearCache {
		if err := drupal.NewSession(page, site, e.driverOptions()...).ClearCache(e.ctx); err != nil {
			return err
		}
	}
	if !e.json {
		e.out.Success(fmt.Sprintf("%d migration(s) completed", len(results)))
	}
	return nil
}

func printMigrations(e *env, results []*drupal.MigrationResult) {
	if e.json {
		rows := make([]migrationRow, 0, len(results))
		for _, r := range results {
			rows = append(rows, migrationRow{
				Migration: r.Kind.ID(),
				File:      r.File,
				Outcome:   r.Outcome.Kind.String(),
				Failed:    r.Outcome.Failed,
				Seconds:   r.Elapsed.Seconds(),
			})
		}
		if err := e.out.JSON(rows); err != nil {
			e.logger.Warn().Err(err).Msg("failed to write results")
		}
		return
	}
	if len(results) == 0 {
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		outcome := r.Outcome.Kind.String()
		rows = append(rows, []string{
			r.Kind.ID(),
			r.File,
			tui.OutcomeStyle(outcome).Render(outcome),
			r.Elapsed.Round(time.Millisecond).String(),
		})
	}
	e.out.Table([]string{"MIGRATION", "FILE", "OUTCOME", "ELAPSED"}, rows)
}
