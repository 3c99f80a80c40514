package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lesson_prep_assistant/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, agent, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		srv, err := server.New(agent, server.Options{
			RequestTimeout: cfg.RequestTimeout,
			SessionTTL:     cfg.SessionTTL,
			Logger:         logger.Named("server"),
		})
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		httpSrv := &http.Server{
			Addr:              listen,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting web server", zap.String("addr", listen), zap.String("provider", cfg.LLM.Provider))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "http listen address (overrides config server_addr)")
	rootCmd.AddCommand(serveCmd)
}
