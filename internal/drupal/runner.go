package drupal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// Ingest form controls.
const (
	selMigrationSelect = "#edit-migrations"
	selSourceFile      = "#edit-source-file"
	selImportSubmit    = "#edit-import"
	selMessagesLink    = ".messages a"
	messagesLinkText   = "here"

	screenshotPerm = 0o750
)

// MigrationResult describes a completed migration.
type MigrationResult struct {
	Kind    MigrationKind
	File    string
	Outcome MigrationOutcome
	Elapsed time.Duration
}

// Runner submits ingest migrations and waits for their terminal banner.
// It keeps no state between runs; running the same file twice submits it twice.
type Runner struct {
	page browser.Page
	site Site
	settings
}

// NewRunner creates a Runner driving page against site.
func NewRunner(page browser.Page, site Site, opts ...Option) *Runner {
	return &Runner{page: page, site: site, settings: newSettings("migration", opts)}
}

// Run submits file to migration kind and waits up to timeout for the outcome.
// A non-positive timeout uses the poller's deadline.
//
// A confirmed failure ends the wait at once: a non-benign error banner returns
// a *errors.MigrationError wrapping ErrMigrationFailed, a done banner with
// failed rows one wrapping ErrMigrationPartialFailure. When no terminal banner
// shows up in time the error wraps both ErrMigrationTimeout and
// ErrPollTimeout. Every MigrationError names the migration and the file.
func (r *Runner) Run(ctx context.Context, kind MigrationKind, file string, timeout time.Duration) (*MigrationResult, error) {
	if !kind.Valid() {
		return nil, e2eerrors.Wrapf(e2eerrors.ErrUnknownMigrationKind, "%q", kind)
	}
	if file == "" {
		return nil, e2eerrors.Wrap(e2eerrors.ErrEmptyValue, "migration source file")
	}

	logger := r.logger.With().Str("migration", kind.ID()).Str("file", file).Logger()
	start := time.Now()

	if err := r.submit(ctx, kind, file); err != nil {
		return nil, e2eerrors.Wrapf(err, "submit migration %s", kind)
	}
	logger.Debug().Msg("migration submitted")

	var outcome MigrationOutcome
	poller := r.poller.WithTimeout(timeout)
	err := poller.Until(ctx, "migration "+kind.ID(), func(ctx context.Context) poll.Result {
		doc, err := snapshot(ctx, r.page)
		if err != nil {
			return poll.Fatal(err)
		}
		outcome = ClassifyBanner(doc, kind.ID(), r.policy)
		switch outcome.Kind {
		case OutcomeSuccess:
			return poll.Done()
		case OutcomePartialFailure:
			return poll.Fatal(&e2eerrors.MigrationError{
				ID: kind.ID(), File: file, Failed: outcome.Failed,
				Messages: []string{outcome.Banner},
				Err:      e2eerrors.ErrMigrationPartialFailure,
			})
		case OutcomeFatal:
			return poll.Fatal(&e2eerrors.MigrationError{
				ID: kind.ID(), File: file, Messages: outcome.Messages,
				Err: e2eerrors.ErrMigrationFailed,
			})
		case OutcomePending:
		}
		return poll.Retry()
	})

	if err != nil {
		var migErr *e2eerrors.MigrationError
		switch {
		case errors.As(err, &migErr):
		case errors.Is(err, e2eerrors.ErrPollTimeout):
			migErr = &e2eerrors.MigrationError{
				ID: kind.ID(), File: file, Err: e2eerrors.ErrMigrationTimeout, Cause: err,
			}
		default:
			return nil, e2eerrors.Wrapf(err, "wait for migration %s (%s)", kind, file)
		}
		migErr.Screenshot = r.captureFailure(ctx, kind)
		logger.Error().Err(migErr).Str("screenshot", migErr.Screenshot).Msg("migration failed")
		return nil, migErr
	}

	elapsed := time.Since(start)
	logger.Info().Dur("elapsed", elapsed).Msg("migration done")
	return &MigrationResult{Kind: kind, File: file, Outcome: outcome, Elapsed: elapsed}, nil
}

// RunAll runs the steps in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, steps []MigrationStep, timeout time.Duration) ([]*MigrationResult, error) {
	results := make([]*MigrationResult, 0, len(steps))
	for _, step := range steps {
		res, err := r.Run(ctx, step.Kind, step.File, timeout)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// MigrationStep pairs a migration kind with its source file.
type MigrationStep struct {
	Kind MigrationKind
	File string
}

// submit fills in and submits the ingest form.
func (r *Runner) submit(ctx context.Context, kind MigrationKind, file string) error {
	if err := r.page.Navigate(ctx, r.site.MigrateFormURL()); err != nil {
		return err
	}

	doc, err := snapshot(ctx, r.page)
	if err != nil {
		return err
	}
	option := fmt.Sprintf("%s option[value=%q]", selMigrationSelect, kind.ID())
	if doc.Find(option).Length() == 0 {
		return e2eerrors.Wrapf(e2eerrors.ErrElementNotFound, "migration %s is not offered by the ingest form", kind)
	}

	if err := r.page.SetValue(ctx, selMigrationSelect, kind.ID()); err != nil {
		return err
	}
	if err := r.page.SetUploadFiles(ctx, selSourceFile, []string{file}); err != nil {
		return err
	}
	return r.page.Click(ctx, selImportSubmit)
}

// captureFailure saves a screenshot for a failed migration and returns its
// path, or "" when screenshots are disabled or the capture fails. When the
// banner links to the migration messages page, that page is captured instead.
func (r *Runner) captureFailure(ctx context.Context, kind MigrationKind) string {
	if r.artifactsDir == "" || ctx.Err() != nil {
		return ""
	}

	if doc, err := snapshot(ctx, r.page); err == nil {
		if link := withText(doc.Find(selMessagesLink), messagesLinkText).First(); link.Length() > 0 {
			if href, hrefErr := linkHref(link, "messages link"); hrefErr == nil {
				_ = follow(ctx, r.page, r.site, href)
			}
		}
	}

	shot, err := r.page.Screenshot(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to capture migration screenshot")
		return ""
	}
	if err := os.MkdirAll(r.artifactsDir, screenshotPerm); err != nil {
		r.logger.Warn().Err(err).Msg("failed to create artifacts directory")
		return ""
	}

	name := fmt.Sprintf("migration-error-%s-%s.png", kind.ID(), uuid.NewString())
	path := filepath.Join(r.artifactsDir, name)
	if err := os.WriteFile(path, shot, 0o600); err != nil {
		r.logger.Warn().Err(err).Msg("failed to write migration screenshot")
		return ""
	}
	return path
}
