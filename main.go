package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/pipeline"
)

var cfg *config.Config

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pagex [url]",
	Short: "Extract price and product images from a web page",
	Long: "Renders a page in a browser, collects its title and links, saves the body HTML and asks " +
		"a language model for the product price and images. Image URLs are checked before they are reported.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		zap.L().Info("running", zap.String("env", cfg.Env))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE:    runExtract,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Invalid URLs already printed their own diagnostic.
		if !eris.Is(err, pipeline.ErrInvalidURL) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
