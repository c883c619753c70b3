package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ncanzani/salesdeck/internal/mcptool"
	"github.com/ncanzani/salesdeck/internal/mockapi"
	"github.com/ncanzani/salesdeck/internal/status"
)

// --- mock-server ---

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a simulated backend for local development",
	Long: `Run a simulated sales-suite backend on localhost.

Serves the same endpoints as the real backend with seeded data. Use
--fail-queue or --fail-rag to rehearse how the dashboard renders partial
subsystem failures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		failQueue, _ := cmd.Flags().GetBool("fail-queue")
		failRAG, _ := cmd.Flags().GetBool("fail-rag")

		mock := mockapi.New(mockapi.Options{FailQueue: failQueue, FailRAG: failRAG})

		addr := fmt.Sprintf("127.0.0.1:%d", port)
		srv := &http.Server{Addr: addr, Handler: mock.Handler()}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			printStep("mock backend listening on http://%s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			printStep("shutting down...")
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	mockServerCmd.Flags().Int("port", 8000, "port to listen on")
	mockServerCmd.Flags().Bool("fail-queue", false, "report the queue backend as down")
	mockServerCmd.Flags().Bool("fail-rag", false, "report the knowledge index as down")
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve console operations as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newConsoleClient()
		if err != nil {
			return err
		}

		s := mcptool.NewServer(mcptool.Deps{
			Client:     client,
			Aggregator: status.New(client, cfg.Poll.Interval()),
		})
		return server.ServeStdio(s)
	},
}
