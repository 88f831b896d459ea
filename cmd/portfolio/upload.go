package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  remoteFlags
		preset string
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if preset == "" {
				preset = cfg.UploadPreset
			}
			if preset == "" {
				return errors.New("no upload preset: pass --preset or set UPLOAD_PRESET")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var result *media.Result
			if flags.url != "" {
				client, err := flags.login(cmd.Context(), ctx.logger)
				if err != nil {
					return err
				}
				result, err = client.Upload(cmd.Context(), filepath.Base(args[0]), f, preset)
				if err != nil {
					return err
				}
			} else {
				store, err := cfg.BuildBlobStore(cmd.Context())
				if err != nil {
					return err
				}
				result, err = cfg.BuildUploader(store, ctx.logger).Upload(cmd.Context(), f, preset)
				if err != nil {
					return err
				}
			}

			renderTable(cmd.OutOrStdout(),
				[]string{"URL", "Key", "Type", "Size"},
				[][]string{{result.SecureURL, result.Key, result.MimeType, fmt.Sprint(result.Size)}},
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "Upload preset token (default: UPLOAD_PRESET)")
	return cmd
}
