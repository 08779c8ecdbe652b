package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/api"
	"github.com/raushankrgupta/product-page-extractor/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve page extraction over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyFlags(cfg)
		env, err := newEnv(ctx, cfg, pipeline.ModeFull)
		if err != nil {
			return err
		}
		defer env.Close()

		handler := api.NewHandler(env.cachedRunner(ctx, cfg), env.Extractor.Verifier(), cfg.Server.JWTSecret)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Bool("auth", cfg.Server.JWTSecret != ""))
		zap.L().Info(fmt.Sprintf("usage: curl \"http://localhost:%d/extract?url=<product_url>\"", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&runOutput, "output", "", "output directory (default from config)")
	serveCmd.Flags().StringVar(&runDriver, "driver", "", "browser driver: chromedp, selenium, playwright or http (default from config)")
	serveCmd.Flags().StringVar(&runProvider, "provider", "", "extraction provider: gemini or anthropic (default from config)")
	rootCmd.AddCommand(serveCmd)
}
