package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/drupal"
	"github.com/jhu-idc/idce2e/internal/errors"
)

// uploadFlags holds flags specific to the upload command.
type uploadFlags struct {
	kind       string
	accessTerm string
	useTermID  int
}

func addUploadCommand(root *cobra.Command, a *app) {
	flags := &uploadFlags{}
	cmd := &cobra.Command{
		Use:   "upload <object name> <file>",
		Short: "Attach a media file to a repository object",
		Long: `Add <file> as new media of the repository object whose title is exactly
<object name>, through the object's "Add media" form.

Examples:
  idce2e upload "Derivative Image 01" ./assets/photo.jpg --kind image
  idce2e upload "Derivative File 01" ./assets/report.pdf --access-term Private --use-term 18`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpload(cmd, args[0], args[1], flags)
		},
	}
	cmd.Flags().StringVar(&flags.kind, "kind", string(drupal.UploadFile), "media kind (file|image)")
	cmd.Flags().StringVar(&flags.accessTerm, "access-term", "", "access term to select")
	cmd.Flags().IntVar(&flags.useTermID, "use-term", drupal.DefaultUseTermID, "media use term id to tick")
	root.AddCommand(cmd)
}

func (a *app) runUpload(cmd *cobra.Command, name, file string, flags *uploadFlags) error {
	kind := drupal.UploadKind(flags.kind)
	if kind != drupal.UploadFile && kind != drupal.UploadImage {
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument, "upload kind %q", flags.kind))
	}
	if _, err := os.Stat(file); err != nil {
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument, "upload file: %v", err))
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

	err = drupal.NewUploader(page, site, e.driverOptions()...).UploadMedia(e.ctx, name, drupal.MediaUpload{
		Kind:       kind,
		File:       file,
		AccessTerm: flags.accessTerm,
		UseTermID:  flags.useTermID,
	})
	if err != nil {
		return err
	}

	if e.json {
		return e.out.JSON(map[string]string{"object": name, "file": file, "kind": flags.kind})
	}
	e.out.Success(fmt.Sprintf("uploaded %s to %q", file, name))
	return nil
}
