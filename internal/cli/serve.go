package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/config"
	"github.com/GriffinCanCode/HTMLReader/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port   string
		host   string
		root   string
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over HTTP",
		Long:  "Starts the reader service. Flags override the environment (PORT, HOST, READER_ROOT, READER_REMOTE, ...).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("host") {
				cfg.Server.Host = host
			}
			if flags.Changed("root") {
				cfg.Reader.Root = root
			}
			if flags.Changed("remote") {
				cfg.Reader.Remote = remote
			}
			if settingsPath != "" {
				cfg.Reader.Settings = settingsPath
			}
			if cmd.Root().PersistentFlags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}

			srv, err := server.NewServer(cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			if modeFlag != "" {
				m, err := policy.ParseMode(modeFlag)
				if err != nil {
					return err
				}
				if _, err := srv.Views().Settings().Update(func(s *settings.Settings) { s.OperatingMode = m.ID() }); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "8000", "Listen port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen host")
	cmd.Flags().StringVarP(&root, "root", "r", ".", "Content root")
	cmd.Flags().BoolVar(&remote, "remote", false, "Allow http(s) documents")
	return cmd
}
