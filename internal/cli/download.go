package cli

import (
	"github.com/spf13/cobra"
)

func addDownloadCommand(root *cobra.Command, a *app) {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a stored binary into the artifacts directory",
		Long: `Fetch <url> with GET and save it under --dir, named after the last segment
of the URL path. Non-2xx responses write nothing and fail the command.

Examples:
  idce2e download https://s3.example.org/bucket/photo.jpg
  idce2e download https://s3.example.org/bucket/photo.jpg --dir /tmp/e2e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEnv(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = e.cfg.Browser.ArtifactsDir
			}

			path, err := e.prober().Download(e.ctx, args[0], dir)
			if err != nil {
				return err
			}
			if e.json {
				return e.out.JSON(map[string]string{"url": args[0], "path": path})
			}
			e.out.Success("saved " + path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory (default browser.artifacts_dir)")
	root.AddCommand(cmd)
}
