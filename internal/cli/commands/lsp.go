package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moops-lang/moops/internal/lsp"
	"github.com/moops-lang/moops/internal/tooling"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the moops language server.

The server offers diagnostics, completion, hover, go-to-definition,
references, and document and workspace symbols for .moops files.

It speaks JSON-RPC over stdin and stdout and is normally started by an
editor. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}

			logger := s.logger.Named("lsp")
			api := tooling.NewAPIWithConfig(&tooling.Config{
				Prelude: s.cfg.Compile.Prelude,
				Logger:  logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return lsp.NewServer(api, logger).Run(ctx)
		},
	}
}
