// Copyright © 2024 The moqls authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rjmurillo/moq.autocomplete/lsp"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LSPCommand creates the "lsp" cobra command.
func LSPCommand(opts ...Option) *cobra.Command {
	c := newCmdConfig(opts)

	var (
		stdio       bool
		port        int
		metricsAddr string
		traceFile   string
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the moqls Language Server Protocol server",
		Long: `Start an LSP server for C# test code that uses Moq.

The language server completes callback lambdas, argument matchers, mock
names and mock objects inside Moq call chains, reports callbacks whose
parameters do not match the mocked method, and offers a quick fix that
rewrites the callback's parameter list.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Observability:
  --metrics-addr ADDR   Serve prometheus metrics on ADDR at /metrics
  --trace-file FILE     Write otel spans for completion and analysis to FILE

Examples:
  moqls lsp                              Start with stdio transport
  moqls lsp --port 7998                  Start with TCP on port 7998
  moqls lsp --metrics-addr :9464         Also expose metrics

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "moqls lsp --stdio" for .cs files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.resolveConfig()
			if err != nil {
				return err
			}
			serverOpts := []lsp.Option{lsp.WithConfig(cfg)}

			if traceFile != "" {
				tp, closeTrace, err := fileTracerProvider(traceFile)
				if err != nil {
					return err
				}
				defer closeTrace()
				serverOpts = append(serverOpts, lsp.WithTracerProvider(tp))
			}

			srv, err := lsp.New(serverOpts...)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, srv)
				if err != nil {
					return err
				}
				defer stop()
			}

			log := commonlog.GetLogger("moqls.cmd")
			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Noticef("moqls LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve prometheus metrics on this address")
	cmd.Flags().StringVar(&traceFile, "trace-file", "",
		"Export otel spans as JSON to this file")

	return cmd
}

// fileTracerProvider exports spans to path. The returned function flushes
// pending spans and closes the file.
func fileTracerProvider(path string) (*sdktrace.TracerProvider, func(), error) {
	f, err := os.Create(path) //nolint:gosec // user-specified output file
	if err != nil {
		return nil, nil, fmt.Errorf("trace file: %w", err)
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
		_ = f.Close()
	}, nil
}

// serveMetrics serves the server's registry on addr until stop is called.
func serveMetrics(addr string, srv *lsp.Server) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(srv.Registry(), promhttp.HandlerOpts{}))
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			commonlog.GetLogger("moqls.cmd").Errorf("metrics server: %s", err)
		}
	}()
	return func() { _ = hs.Close() }, nil
}
