package cli

import (
	stderrors "errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/probe"
	"github.com/jhu-idc/idce2e/internal/tui"
)

// probeFlags holds flags specific to the probe command.
type probeFlags struct {
	expect      []int
	wait        bool
	waitTimeout time.Duration
	method      string
	forceHTTPS  bool
}

func addProbeCommand(root *cobra.Command, a *app) {
	flags := &probeFlags{}
	cmd := &cobra.Command{
		Use:   "probe <url>...",
		Short: "Check the HTTP status of stored binaries",
		Long: `Send one HEAD (or GET) request to each URL, without following redirects,
and report the status codes. With --expect any other status fails the command.

With --wait each URL is probed again until it answers one of the --expect
codes, which covers files still being replicated to object storage.

Examples:
  idce2e probe https://s3.example.org/bucket/photo.jpg --expect 200
  idce2e probe http://localhost/system/files/private.jpg --expect 403 --force-https
  idce2e probe https://s3.example.org/bucket/derivative.jpg --expect 200 --wait`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProbe(cmd, args, flags)
		},
	}
	cmd.Flags().IntSliceVar(&flags.expect, "expect", nil, "accepted status codes")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "probe until an expected status is returned")
	cmd.Flags().DurationVar(&flags.waitTimeout, "wait-timeout", 0, "deadline of --wait (default poll.timeout)")
	cmd.Flags().StringVar(&flags.method, "method", "", "request method, HEAD or GET (default probe.method)")
	cmd.Flags().BoolVar(&flags.forceHTTPS, "force-https", false, "upgrade http URLs to https")
	root.AddCommand(cmd)
}

// prober builds a Prober from the probe config.
func (e *env) prober(opts ...probe.Option) *probe.Prober {
	base := []probe.Option{
		probe.WithMethod(e.cfg.Probe.Method),
		probe.WithTimeout(e.cfg.Probe.Timeout),
		probe.WithForceHTTPS(e.cfg.Probe.ForceHTTPS),
		probe.WithPace(e.cfg.Probe.Pace),
		probe.WithLogger(e.logger),
	}
	return probe.New(append(base, opts...)...)
}

func (a *app) runProbe(cmd *cobra.Command, urls []string, flags *probeFlags) error {
	if flags.wait && len(flags.expect) == 0 {
		return errors.NewExitCode2Error(errors.Wrap(errors.ErrInvalidArgument, "--wait requires --expect"))
	}

	e, err := a.newEnv(cmd)
	if err != nil {
		return err
	}

	var opts []probe.Option
	if flags.method != "" {
		opts = append(opts, probe.WithMethod(flags.method))
	}
	if cmd.Flags().Changed("force-https") {
		opts = append(opts, probe.WithForceHTTPS(flags.forceHTTPS))
	}
	p := e.prober(opts...)

	var results []*probe.Result
	var checkErr error
	if flags.wait {
		poller := e.poller()
		for _, u := range urls {
			res, err := p.WaitForStatus(e.ctx, poller, u, flags.waitTimeout, flags.expect...)
			if res != nil {
				results = append(results, res)
			}
			if err != nil {
				checkErr = err
				break
			}
		}
	} else {
		results, err = p.ProbeAll(e.ctx, urls)
		if err != nil {
			return err
		}
		if len(flags.expect) > 0 {
			var errs []error
			for _, res := range results {
				errs = append(errs, probe.Expect(res, flags.expect...))
			}
			checkErr = stderrors.Join(errs...)
		}
	}

	printProbeResults(e, results)
	return checkErr
}

func printProbeResults(e *env, results []*probe.Result) {
	if e.json {
		if results == nil {
			results = []*probe.Result{}
		}
		if err := e.out.JSON(results); err != nil {
			e.logger.Warn().Err(err).Msg("failed to write probe results")
		}
		return
	}
	if len(results) == 0 {
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := strconv.Itoa(r.StatusCode)
		rows = append(rows, []string{r.Method, tui.StatusCodeStyle(r.StatusCode).Render(status), r.URL})
	}
	e.out.Table([]string{"METHOD", "STATUS", "URL"}, rows)
}
