package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/medcombo/internal/cache"
	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the combination dashboard API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selection()
		if err != nil {
			return err
		}
		opt, err := cfg.ComboOptions()
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		results, err := cache.New(cfg.CacheSize, func(col1, col2 string) (*combo.Result, error) {
			return combo.Compute(ds, col1, col2, opt)
		})
		if err != nil {
			return err
		}

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		srv := server.New(server.Config{Port: port}, server.NewHandler(ds, results, sel, version))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d rows) on http://localhost:%d\n", ds.Name(), ds.Len(), port)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		if err := srv.Stop(); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8054, "listen port (overrides config)")
}
