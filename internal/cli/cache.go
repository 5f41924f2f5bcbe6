package cli

import (
	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/drupal"
)

func addCacheCommand(root *cobra.Command, a *app) {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Site cache maintenance",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear all Drupal caches through the devel module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.newEnv(cmd)
			if err != nil {
				return err
			}
			page, site, closeFn, err := a.loggedIn(e)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := drupal.NewSession(page, site, e.driverOptions()...).ClearCache(e.ctx); err != nil {
				return err
			}
			if e.json {
				return e.out.JSON(map[string]bool{"cleared": true})
			}
			e.out.Success("cache cleared")
			return nil
		},
	})
	root.AddCommand(cacheCmd)
}
