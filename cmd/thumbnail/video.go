package main

import (
	"context"

	"github.com/spf13/cobra"

	"media-derivatives/internal/media"
	"media-derivatives/internal/video"
)

func newVideoCommand(root *rootOptions) *cobra.Command {
	var (
		timeOffset float64
		mimeType   string
	)

	cmd := &cobra.Command{
		Use:   "video <input> <output.jpg>",
		Short: "Capture one frame of a video as a JPEG thumbnail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sampler := root.sampler()
			return runSingle(cmd, args[0], args[1], mimeType, func(ctx context.Context, buf media.Buffer) (*media.Result, error) {
				return sampler.CreateVideoThumbnail(ctx, buf, timeOffset)
			})
		},
	}

	flags := cmd.Flags()
	flags.Float64VarP(&timeOffset, "time", "t", video.DefaultTimeOffset, "capture offset in seconds, clamped to half the duration")
	flags.StringVar(&mimeType, "mime", "", "MIME type of the input (default: from extension)")
	return cmd
}
