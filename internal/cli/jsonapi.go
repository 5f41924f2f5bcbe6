package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/jsonapi"
)

// jsonapiFlags holds flags specific to the jsonapi command.
type jsonapiFlags struct {
	single  bool
	related string
}

// labelAttributes are tried in order to label a resource in text output.
var labelAttributes = []string{"title", "name", "filename"} //nolint:gochecknoglobals // read-only lookup order

func addJSONAPICommand(root *cobra.Command, a *app) {
	flags := &jsonapiFlags{}
	cmd := &cobra.Command{
		Use:   "jsonapi <entity> <bundle> [<field> <value>]",
		Short: "Query migrated content over JSON:API",
		Long: `Fetch /jsonapi/<entity>/<bundle>, filtered on <field> = <value> when given.

With --single the filter must match exactly one resource. With --related the
identifiers of that relationship are resolved and printed instead.

Requests authenticate with site.username and site.password when a password is
configured, which exposes unpublished content.

Examples:
  idce2e jsonapi taxonomy_term person name "Ada Lovelace" --single
  idce2e jsonapi node islandora_object title "Derivative Image 01" --single --related field_member_of`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 && len(args) != 4 {
				return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument,
					"expected <entity> <bundle> [<field> <value>], got %d arguments", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJSONAPI(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.single, "single", false, "require exactly one match")
	cmd.Flags().StringVar(&flags.related, "related", "", "resolve this relationship of the matches")
	root.AddCommand(cmd)
}

// jsonapiClient builds a client for the site under test.
func (e *env) jsonapiClient() (*jsonapi.Client, error) {
	opts := []jsonapi.Option{
		jsonapi.WithTimeout(e.cfg.JSONAPI.Timeout),
		jsonapi.WithLogger(e.logger),
	}
	if e.cfg.Site.Password != "" {
		opts = append(opts, jsonapi.WithBasicAuth(e.cfg.Site.Username, e.cfg.Site.Password))
	}
	return jsonapi.New(e.cfg.Site.BaseURL, opts...)
}

func (a *app) runJSONAPI(cmd *cobra.Command, args []string, flags *jsonapiFlags) error {
	e, err := a.newEnv(cmd)
	if err != nil {
		return err
	}
	client, err := e.jsonapiClient()
	if err != nil {
		return err
	}

	entity, bundle := args[0], args[1]
	var field, value string
	if len(args) == 4 {
		field, value = args[2], args[3]
	}

	var resources []jsonapi.Resource
	if flags.single {
		res, err := client.GetSingle(e.ctx, entity, bundle, field, value)
		if err != nil {
			return err
		}
		resources = []jsonapi.Resource{*res}
	} else {
		resources, err = client.Get(e.ctx, entity, bundle, field, value)
		if err != nil {
			return err
		}
	}

	if flags.related != "" {
		resources, err = resolveRelated(e, client, resources, flags.related)
		if err != nil {
			return err
		}
	}

	printResources(e, resources)
	return nil
}

// resolveRelated replaces resources by the targets of their relationship name.
func resolveRelated(e *env, client *jsonapi.Client, resources []jsonapi.Resource, name string) ([]jsonapi.Resource, error) {
	var out []jsonapi.Resource
	for _, r := range resources {
		for _, id := range r.Related(name) {
			target, err := client.Resolve(e.ctx, id)
			if err != nil {
				return nil, errors.Wrapf(err, "resolve %s of %s %s", name, r.Type, r.ID)
			}
			out = append(out, *target)
		}
	}
	return out, nil
}

func printResources(e *env, resources []jsonapi.Resource) {
	if e.json {
		if resources == nil {
			resources = []jsonapi.Resource{}
		}
		if err := e.out.JSON(resources); err != nil {
			e.logger.Warn().Err(err).Msg("failed to write resources")
		}
		return
	}
	if len(resources) == 0 {
		e.out.Info("no resources")
		return
	}

	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		rows = append(rows, []string{string(r.Type), r.ID, resourceLabel(r)})
	}
	e.out.Table([]string{"TYPE", "ID", "LABEL"}, rows)
}

// resourceLabel returns the first label attribute the resource carries.
func resourceLabel(r jsonapi.Resource) string {
	for _, attr := range labelAttributes {
		if v, ok := r.Attributes[attr]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func addAssetsCommand(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "assets [url]",
		Short: "Check that the migration assets host is up",
		Long: `GET the static assets host that ingest migrations fetch media from and
require a 200 answer. The URL defaults to jsonapi.assets_base_url
(BASE_ASSETS_URL).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEnv(cmd)
			if err != nil {
				return err
			}
			target := e.cfg.JSONAPI.AssetsBaseURL
			if len(args) == 1 {
				target = args[0]
			}
			client, err := e.jsonapiClient()
			if err != nil {
				return err
			}
			if err := client.CheckAssets(e.ctx, target); err != nil {
				if stderrors.Is(err, errors.ErrEmptyValue) {
					return errors.NewExitCode2Error(err)
				}
				return err
			}
			if e.json {
				return e.out.JSON(map[string]any{"url": target, "up": true})
			}
			e.out.Success("assets host " + target + " is up")
			return nil
		},
	})
}
