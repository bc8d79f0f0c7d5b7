package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/logger"
	"github.com/rezonia/einvoice/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for reading and converting invoices.

The API provides endpoints for:
  - POST /api/v1/convert?to=ubl|cii   - Convert XML or PDF to the target syntax
  - POST /api/v1/read                 - Read a document into JSON
  - POST /api/v1/write?syntax=ubl|cii - Write a JSON document as XML
  - POST /api/v1/check                - Round trip stability check
  - POST /api/v1/info                 - Get file information
  - GET  /health                      - Health check

Examples:
  # Start server on default port
  einvoice serve

  # Start on custom port with two decimal amounts
  EINVOICE_AMOUNT_PRECISION=2 einvoice serve --address :9090

  # Start in debug mode
  einvoice serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverAddr != "" {
		cfg.Server.Address = serverAddr
	}
	if serverDebug {
		cfg.Server.Debug = true
	}
	if readTimeout > 0 {
		cfg.Server.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		cfg.Server.WriteTimeout = writeTimeout
	}

	log := logger.WithComponent("server")
	config := &server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		Debug:           cfg.Server.Debug,
		AmountPrecision: cfg.Writer.AmountPrecision,
		Indent:          cfg.Writer.Indent,
		AttachmentName:  cfg.PDF.AttachmentName,
		Concurrency:     cfg.Batch.Concurrency,
		Logger:          &log,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", cfg.Server.Address)
	return srv.Run()
}
