package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/arith/pkg/api"
	grpcapi "github.com/lemonberrylabs/arith/pkg/api/grpc"
	"github.com/lemonberrylabs/arith/pkg/store"
	"github.com/lemonberrylabs/arith/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, web UI, and gRPC service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	cmd.Flags().Int("max-expression-length", 0, "Longest accepted expression in bytes (default 4096, env MAX_EXPRESSION_LENGTH)")
	cmd.Flags().Int("history-size", 0, "Number of evaluations kept in history (default 1000, env HISTORY_SIZE)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	port := envOrDefault("PORT", "8787")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	grpcPort := envOrDefault("GRPC_PORT", "8788")
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		grpcPort = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	maxLen := envIntOrDefault("MAX_EXPRESSION_LENGTH", api.DefaultMaxExpressionLength)
	if v, _ := cmd.Flags().GetInt("max-expression-length"); v != 0 {
		maxLen = v
	}
	if maxLen <= 0 {
		maxLen = api.DefaultMaxExpressionLength
	}

	historySize := envIntOrDefault("HISTORY_SIZE", store.DefaultCapacity)
	if v, _ := cmd.Flags().GetInt("history-size"); v != 0 {
		historySize = v
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	grpcAddr := fmt.Sprintf("%s:%s", host, grpcPort)

	s := store.New(historySize)
	server := api.New(s, logger, api.Config{MaxExpressionLength: maxLen})
	web.New(s, maxLen).Register(server.App())

	grpcServer := grpcapi.New(s, logger, maxLen)
	go func() {
		logger.Info().Msgf("gRPC server listening on %s", grpcAddr)
		if err := grpcServer.Serve(grpcAddr); err != nil {
			logger.Fatal().Err(err).Msg("gRPC server error")
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}()

	logger.Info().
		Str("version", version).
		Int("max_expression_length", maxLen).
		Int("history_size", historySize).
		Msgf("arith listening on %s", addr)
	return server.Listen(addr)
}
