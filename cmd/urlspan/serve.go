package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/scanner"
	"github.com/praetorian-inc/urlspan/pkg/serve"
)

var (
	serveContextLines int
	serveDedupe       string
	serveSchemes      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming NDJSON server",
	Long: `Run urlspan as a long-lived server that reads requests from stdin and
writes responses to stdout, one JSON object per line.

Request types: extract, scan, scan_batch, findings, close.
The process runs until stdin closes, a close request arrives, or SIGTERM
is received.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveContextLines, "context-lines", 3, "Lines of context before/after matches (0 to disable)")
	serveCmd.Flags().StringVar(&serveDedupe, "dedupe", "location", "Drop repeated URLs within a scan: location or url")
	serveCmd.Flags().StringVar(&serveSchemes, "schemes", "http,https", "Comma-separated URL schemes to recognize")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dedupe, err := matcher.ParseDedupeMode(serveDedupe)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(serveSchemes)
	if err != nil {
		return err
	}

	core, err := scanner.NewCore(matcher.Config{
		Extractor:    extractor,
		ContextLines: serveContextLines,
		Dedupe:       dedupe,
		Logger:       logger.Named("matcher"),
	})
	if err != nil {
		return fmt.Errorf("creating scanner: %w", err)
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout(),
		serve.WithExtractor(extractor),
		serve.WithLogger(logger.Named("serve")))
	return srv.Run(ctx)
}

// contextOrBackground guards commands invoked directly in tests.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
