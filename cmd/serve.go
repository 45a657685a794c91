package cmd

import (
	"log"
	"os"

	"github.com/KaramelBytes/chartloom-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP for a charting frontend",
	Long: `Starts an HTTP API. POST a data-URI payload to /api/views (or plain JSON
records to /api/views/raw) and receive the five views plus an error string.
The server never renders charts; it only returns the view data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveListen
		timeout := 0
		if cfg != nil {
			if addr == "" {
				addr = cfg.ListenAddr
			}
			timeout = cfg.HTTPTimeoutSec
		}
		if addr == "" {
			addr = "127.0.0.1:8322"
		}
		logger := log.New(os.Stderr, "chartloom ", log.LstdFlags)
		return server.New(addr, timeout, logger).ListenAndServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config listen_addr)")
}
