package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

func newRenderCmd() *cobra.Command {
	var (
		output string
		format string
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Render one document to a standalone reader page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			s, err := loadSettings(logger)
			if err != nil {
				return err
			}

			loader, location, err := loaderFor(args[0], remote)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			doc, err := loader.Load(ctx, location)
			if err != nil {
				return err
			}

			renderer := render.NewRenderer(logger.Component("render"), nil, 0)
			view, err := renderOne(ctx, renderer, doc, s)
			if err != nil {
				return err
			}
			defer view.Close()

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeView(out, view, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format (html|json)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Allow http(s) documents")
	return cmd
}

// loaderFor returns a loader confined to the directory of a local path,
// or an HTTP loader for URLs.
func loaderFor(arg string, remote bool) (source.Loader, string, error) {
	if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if !remote {
			return nil, "", fmt.Errorf("%w: pass --remote to fetch %s", source.ErrUnsupportedScheme, arg)
		}
		return source.NewHTTPLoader(source.DefaultHTTPOptions(), nil), arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, "", err
	}
	files, err := source.NewFileLoader(filepath.Dir(abs), 0)
	if err != nil {
		return nil, "", err
	}
	return files, filepath.Base(abs), nil
}

func renderOne(ctx context.Context, r *render.Renderer, doc *source.Document, s settings.Settings) (*render.View, error) {
	return r.Render(ctx, render.Request{
		ID:       doc.Location,
		Name:     doc.Name,
		Location: doc.Location,
		Data:     doc.Data,
		Settings: s,
	})
}

func writeView(w io.Writer, view *render.View, format string) error {
	switch format {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(view.Info(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "html", "":
		_, err := io.WriteString(w, view.Page)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
