package main

import (
	"context"

	"github.com/spf13/cobra"

	"media-derivatives/internal/media"
)

func newImageCommand(root *rootOptions) *cobra.Command {
	var (
		maxWidth  int
		maxHeight int
		quality   float64
		mimeType  string
	)

	cmd := &cobra.Command{
		Use:   "image <input> <output.jpg>",
		Short: "Compress a still image into a JPEG thumbnail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := root.encoder()
			return runSingle(cmd, args[0], args[1], mimeType, func(ctx context.Context, buf media.Buffer) (*media.Result, error) {
				return encoder.CompressImage(ctx, buf, media.WithMaxSize(maxWidth, maxHeight), media.WithQuality(quality))
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&maxWidth, "max-width", media.DefaultMaxWidth, "bounding box width")
	flags.IntVar(&maxHeight, "max-height", media.DefaultMaxHeight, "bounding box height")
	flags.Float64Var(&quality, "quality", media.DefaultQuality, "JPEG quality in [0,1]")
	flags.StringVar(&mimeType, "mime", "", "MIME type of the input (default: from extension)")
	return cmd
}
