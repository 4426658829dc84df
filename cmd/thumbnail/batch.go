package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"media-derivatives/internal/filesystem"
	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/mediatypes"
	"media-derivatives/internal/workers"
)

// errBatchFailed is returned when at least one file failed.
var errBatchFailed = errors.New("batch had failures")

func newBatchCommand(root *rootOptions) *cobra.Command {
	var (
		workerCount int
		failFast    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <output-dir> <input>...",
		Short: "Create thumbnails for many files in parallel",
		Long: `Create thumbnails for many files in parallel.

Each input is a file or a directory. A directory contributes the image and
video files directly inside it; subdirectories are not descended into.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, inputs := args[0], args[1:]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			inputs, err := expandInputs(inputs)
			if err != nil {
				return err
			}
			inputs = mediaInputs(inputs)
			if len(inputs) == 0 {
				return errors.New("no image or video inputs")
			}
			if err := checkOutputNames(outDir, inputs); err != nil {
				return err
			}
			if workerCount <= 0 {
				workerCount = batchWorkers(inputs)
			}
			logging.Debug("batch: %d files, %d workers", len(inputs), workerCount)

			gen := root.generator()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(workerCount)

			var (
				mu     sync.Mutex
				failed int
			)
			for _, input := range inputs {
				g.Go(func() error {
					out := outputPath(outDir, input)
					buf, err := readBuffer(input, "")
					var res *media.Result
					if err == nil {
						res, err = gen.Generate(ctx, buf)
					}
					if err == nil {
						err = os.WriteFile(out, res.Data, 0o644)
					}

					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", input, err)
						if failFast {
							return err
						}
						return nil
					}
					report(cmd.OutOrStdout(), out, res)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errBatchFailed, failed, len(inputs))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&workerCount, "workers", "w", 0, "parallel derivations (default: from CPU count)")
	flags.BoolVar(&failFast, "fail-fast", false, "stop at the first failure")
	return cmd
}

// expandInputs replaces each directory in paths with the regular files it
// contains. Paths that cannot be stat'ed are kept so they are reported as
// failures alongside the rest of the batch.
func expandInputs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := filesystem.StatWithRetry(p, filesystem.DefaultRetryConfig())
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read input directory: %w", err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	return out, nil
}

// mediaInputs drops files whose extension is neither image nor video.
func mediaInputs(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if mediatypes.IsMediaFile(strings.ToLower(filepath.Ext(p))) {
			out = append(out, p)
		}
	}
	return out
}

// batchWorkers sizes the pool for the mix of kinds in paths.
func batchWorkers(paths []string) int {
	var images, videos int
	for _, p := range paths {
		switch mediatypes.GetFileType(strings.ToLower(filepath.Ext(p))) {
		case mediatypes.FileTypeImage:
			images++
		case mediatypes.FileTypeVideo:
			videos++
		}
	}
	switch {
	case videos == 0:
		return workers.ForKind(mediatypes.FileTypeImage, len(paths))
	case images == 0:
		return workers.ForKind(mediatypes.FileTypeVideo, len(paths))
	default:
		return workers.ForMixed(len(paths))
	}
}

func outputPath(dir, input string) string {
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".jpg")
}

// checkOutputNames rejects inputs that would write the same output file.
func checkOutputNames(dir string, inputs []string) error {
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		out := outputPath(dir, input)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%s and %s both map to %s", prev, input, out)
		}
		seen[out] = input
	}
	return nil
}
