package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/library"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

// BatchResult summarizes one document of a batch run.
type BatchResult struct {
	Path   string
	Output string
	Err    error
}

func newBatchCmd() *cobra.Command {
	var (
		outDir  string
		jobs    int
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Render every document under a directory",
		Long:  "Scans <dir> for recognized documents and writes one standalone page per document to the output directory, mirroring the tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			s, err := loadSettings(logger)
			if err != nil {
				return err
			}
			files, err := source.NewFileLoader(args[0], 0)
			if err != nil {
				return err
			}
			scanner := library.NewScanner(s.Extensions())

			var paths []string
			if pattern != "" {
				if paths, err = scanner.Glob(files.Root(), pattern); err != nil {
					return err
				}
			} else {
				entries, err := scanner.Scan(commandContext(cmd), files.Root())
				if err != nil {
					return err
				}
				for _, e := range entries {
					paths = append(paths, e.Path)
				}
			}

			renderer := render.NewRenderer(logger.Component("render"), nil, 0)
			results := runBatch(cmd, renderer, files, paths, outDir, jobs, s, logger.Component("batch"))

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s\n", r.Path, r.Output)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "out", "Output directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Documents rendered concurrently")
	cmd.Flags().StringVarP(&pattern, "glob", "g", "", "Only documents matching this pattern")
	return cmd
}

func runBatch(cmd *cobra.Command, r *render.Renderer, files *source.FileLoader, paths []string, outDir string, jobs int, s settings.Settings, logger *zap.Logger) []BatchResult {
	ctx := commandContext(cmd)
	results := make([]BatchResult, len(paths))

	var g errgroup.Group
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			out, err := renderTo(ctx, r, files, p, outDir, s)
			results[i] = BatchResult{Path: p, Output: out, Err: err}
			if err != nil {
				logger.Debug("Document failed", zap.String("path", p), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func renderTo(ctx context.Context, r *render.Renderer, files *source.FileLoader, p, outDir string, s settings.Settings) (string, error) {
	doc, err := files.Load(ctx, p)
	if err != nil {
		return "", err
	}
	view, err := renderOne(ctx, r, doc, s)
	if err != nil {
		return "", err
	}
	defer view.Close()

	target := filepath.Join(outDir, filepath.FromSlash(outputName(p)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, []byte(view.Page), 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// outputName maps any recognized extension to .html.
func outputName(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".html"
}
