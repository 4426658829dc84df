package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"media-derivatives/internal/filesystem"
	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/mediatypes"
	"media-derivatives/internal/startup"
	"media-derivatives/internal/thumbnail"
	"media-derivatives/internal/video"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	timeout     time.Duration
	maxPixels   int
	vips        bool
	logLevel    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "thumbnail",
		Short:        "Create JPEG thumbnails from images and videos",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				level, ok := logging.ParseLevel(opts.logLevel)
				if !ok {
					return fmt.Errorf("invalid log level %q", opts.logLevel)
				}
				logging.SetLevel(level)
			}
			if opts.vips {
				media.InitVips()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.vips && media.IsVipsAvailable() {
				media.ShutdownVips()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ffmpegPath, "ffmpeg", os.Getenv("FFMPEG_PATH"), "ffmpeg binary (default: search PATH)")
	flags.StringVar(&opts.ffprobePath, "ffprobe", os.Getenv("FFPROBE_PATH"), "ffprobe binary (default: next to ffmpeg)")
	flags.StringVar(&opts.tempDir, "temp-dir", os.TempDir(), "directory for video handles")
	flags.DurationVar(&opts.timeout, "timeout", 60*time.Second, "bound on each ffmpeg/ffprobe run")
	flags.IntVar(&opts.maxPixels, "max-pixels", media.DefaultMaxPixels, "largest source image decoded (video frames are not limited)")
	flags.BoolVar(&opts.vips, "vips", false, "use libvips as a fallback decoder")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		newImageCommand(opts),
		newVideoCommand(opts),
		newBatchCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

func (o *rootOptions) encoder() *media.Encoder {
	cfg := media.EncoderConfig{
		MaxPixels:     o.maxPixels,
		FFmpegTimeout: o.timeout,
	}
	if path, err := video.FindFFmpeg(o.ffmpegPath); err == nil {
		cfg.FFmpegPath = path
	}
	return media.NewEncoder(cfg)
}

func (o *rootOptions) sampler() *video.Sampler {
	return video.NewSampler(video.SamplerConfig{
		TempDir:     o.tempDir,
		FFmpegPath:  o.ffmpegPath,
		FFprobePath: o.ffprobePath,
		Timeout:     o.timeout,
	})
}

func (o *rootOptions) generator() *thumbnail.Generator {
	return thumbnail.NewGenerator(o.encoder(), o.sampler())
}

// readBuffer loads path with the MIME type from mimeOverride or the file
// extension.
func readBuffer(path, mimeOverride string) (media.Buffer, error) {
	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return media.Buffer{}, err
	}
	mt := mimeOverride
	if mt == "" {
		mt = mediatypes.GetMimeType(strings.ToLower(filepath.Ext(path)))
	}
	return media.Buffer{Data: data, MimeType: mt}, nil
}

func report(w io.Writer, path string, res *media.Result) {
	fmt.Fprintf(w, "%s: %dx%d, %d bytes\n", path, res.Width, res.Height, res.Size())
}

type deriveFunc func(ctx context.Context, buf media.Buffer) (*media.Result, error)

func runSingle(cmd *cobra.Command, input, output, mimeOverride string, derive deriveFunc) error {
	buf, err := readBuffer(input, mimeOverride)
	if err != nil {
		return err
	}
	res, err := derive(cmd.Context(), buf)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := os.WriteFile(output, res.Data, 0o644); err != nil {
		return err
	}
	report(cmd.OutOrStdout(), output, res)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "thumbnail %s (commit %s, %s %s/%s)\n",
				info.Version, info.Commit, info.GoVersion, info.OS, info.Arch)
		},
	}
}
