package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhu-idc/idce2e/internal/config"
	"github.com/jhu-idc/idce2e/internal/errors"
)

// Config show output formats.
const (
	configFormatYAML = "yaml"
	configFormatJSON = "json"
)

func addConfigCommand(root *cobra.Command, a *app) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect idce2e configuration",
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after merging, highest precedence first:
  - CLI flags (--base-url, --user, --timeout, --artifacts-dir, --headed)
  - IDCE2E_* environment variables, TEST_OPERATION_TIMEOUT_MS and BASE_ASSETS_URL
  - Project config (.idce2e/config.yaml)
  - Global config (~/.idce2e/config.yaml)
  - Built-in defaults

The site password is masked.

Examples:
  idce2e config show
  idce2e config show --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.newEnv(cmd)
			if err != nil {
				return err
			}
			// --output json implies JSON unless --format was given.
			if e.json && !cmd.Flags().Changed("format") {
				format = configFormatJSON
			}
			return writeConfig(cmd.OutOrStdout(), e.cfg, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", configFormatYAML, "output format (yaml or json)")

	configCmd.AddCommand(showCmd)
	root.AddCommand(configCmd)
}

// writeConfig writes the redacted cfg in format.
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	safe := cfg.Redacted()
	switch format {
	case configFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(safe); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	case configFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(safe); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	default:
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument,
			"config format %q (use %s or %s)", format, configFormatYAML, configFormatJSON))
	}
}
