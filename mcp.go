package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/mcpserver"
	"github.com/raushankrgupta/product-page-extractor/pipeline"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve page extraction as MCP tools over stdio",
	Long: "Starts a Model Context Protocol server on stdin/stdout with the extract_page and " +
		"verify_images tools. Logs go to stderr.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyFlags(cfg)
		env, err := newEnv(ctx, cfg, pipeline.ModeFull)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := mcpserver.NewServer(env.cachedRunner(ctx, cfg), env.Extractor.Verifier(), version)

		zap.L().Info("starting mcp server on stdio")
		if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
			return eris.Wrap(err, "mcp server")
		}
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&runOutput, "output", "", "output directory (default from config)")
	mcpCmd.Flags().StringVar(&runDriver, "driver", "", "browser driver: chromedp, selenium, playwright or http (default from config)")
	mcpCmd.Flags().StringVar(&runProvider, "provider", "", "extraction provider: gemini or anthropic (default from config)")
	rootCmd.AddCommand(mcpCmd)
}
