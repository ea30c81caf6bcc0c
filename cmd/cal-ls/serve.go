package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cal-lang/cal-ls/internal/lsp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the language server over stdio",
	Long:  "Start the C/AL language server, communicating over stdin/stdout using the LSP JSON-RPC protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		server := lsp.NewServer()
		return server.Run(ctx)
	},
}
