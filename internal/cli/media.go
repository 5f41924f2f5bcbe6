package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/drupal"
	"github.com/jhu-idc/idce2e/internal/errors"
)

// mediaFlags holds flags specific to the media command.
type mediaFlags struct {
	expect  int
	uses    []string
	timeout time.Duration
}

func addMediaCommand(root *cobra.Command, a *app) {
	flags := &mediaFlags{}
	cmd := &cobra.Command{
		Use:   "media <object name>",
		Short: "List or wait for the derivatives of a repository object",
		Long: `Show the media listing of the one repository object whose title contains
<object name>. "Item 1" also matches "Item 10", so a name shared by several
objects is an error. Each (media, use) pair is one row.

With --expect or --use the listing is re-read, reloading the page, until it
holds that many derivatives and every listed use, or until the deadline.

Examples:
  idce2e media "Derivative Image 01"
  idce2e media "Derivative Image 01" --expect 3 --timeout 2m
  idce2e media "Derivative Image 01" --use "Service File" --use "Thumbnail Image"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMedia(cmd, args[0], flags)
		},
	}
	cmd.Flags().IntVar(&flags.expect, "expect", -1, "wait for exactly this many derivatives")
	cmd.Flags().StringSliceVar(&flags.uses, "use", nil, "wait for a derivative with this media use (repeatable)")
	cmd.Flags().DurationVar(&flags.timeout, "wait-timeout", 0, "deadline of the wait (default poll.timeout)")
	root.AddCommand(cmd)
}

// parseUses validates media use names against the known vocabulary.
func parseUses(names []string) ([]drupal.MediaUse, error) {
	known := drupal.MediaUses()
	uses := make([]drupal.MediaUse, 0, len(names))
	for _, n := range names {
		u := drupal.MediaUse(strings.TrimSpace(n))
		if !slices.Contains(known, u) {
			return nil, errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument, "media use %q", n))
		}
		uses = append(uses, u)
	}
	return uses, nil
}

// mediaCondition combines --expect and --use. It is nil when neither is set.
func mediaCondition(expect int, uses []drupal.MediaUse) func(drupal.Derivatives) bool {
	if expect < 0 && len(uses) == 0 {
		return nil
	}
	hasUses := drupal.HasUses(uses...)
	return func(ds drupal.Derivatives) bool {
		if expect >= 0 && !drupal.CountIs(expect)(ds) {
			return false
		}
		return hasUses(ds)
	}
}

func (a *app) runMedia(cmd *cobra.Command, name string, flags *mediaFlags) error {
	uses, err := parseUses(flags.uses)
	if err != nil {
		return err
	}
	e, err := a.newEnv(cmd)
	if err != nil {
		return err
	}

	page, site, closeFn, err := a.loggedIn(e)
	if err != nil {
		return err
	}
	defer closeFn()

	inspector := drupal.NewInspector(page, site, e.driverOptions()...)
	var ds drupal.Derivatives
	if want := mediaCondition(flags.expect, uses); want != nil {
		ds, err = inspector.WaitForMedia(e.ctx, name, want, flags.timeout)
	} else {
		ds, err = inspector.FindMediaOf(e.ctx, name)
	}
	printDerivatives(e, ds)
	return err
}

func printDerivatives(e *env, ds drupal.Derivatives) {
	if e.json {
		if ds == nil {
			ds = drupal.Derivatives{}
		}
		if err := e.out.JSON(ds); err != nil {
			e.logger.Warn().Err(err).Msg("failed to write derivatives")
		}
		return
	}
	if len(ds) == 0 {
		e.out.Info("no media")
		return
	}

	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, []string{d.Name, string(d.MediaType), d.MimeType, string(d.Use), d.PageURL})
	}
	e.out.Table([]string{"NAME", "TYPE", "MIME", "USE", "URL"}, rows)
	e.out.Info(fmt.Sprintf("%d derivative(s)", len(ds)))
}
