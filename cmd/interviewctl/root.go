package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	rediscache "github.com/ParthivReddyY/ai-interviewer/internal/adapter/cache/redis"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/app"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	obsctx "github.com/ParthivReddyY/ai-interviewer/internal/observability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "interviewctl",
		Short:         "AI interview generators from the command line",
		Long:          "interviewctl generates interview questions, parses resumes, scores answers and writes summaries using the configured completion credentials, falling back to deterministic results when none are available.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newQuestionsCmd(),
		newParseResumeCmd(),
		newEvaluateCmd(),
		newQuickCmd(),
		newSummaryCmd(),
	)
	return root
}

// services loads configuration and wires the generators. Logs go to stderr so
// stdout carries only the JSON result. The returned func releases Redis.
func services(ctx context.Context) (context.Context, app.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, app.Services{}, nil, err
	}
	logger := observability.NewLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	ctx = obsctx.ContextWithLogger(ctx, logger)

	rdb, err := app.OpenRedis(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, resume cache disabled", slog.Any("error", err))
		rdb = nil
	}
	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	gw, err := app.BuildGateway(ctx, cfg)
	if err != nil {
		cleanup()
		return ctx, app.Services{}, nil, err
	}
	if gw == nil {
		logger.Warn("no LLM credentials configured; results come from fallbacks")
	}
	svcs, err := app.BuildServices(cfg, gw, rediscache.NewResumeCache(rdb, cfg.ResumeCacheTTL))
	if err != nil {
		cleanup()
		return ctx, app.Services{}, nil, err
	}
	return ctx, svcs, cleanup, nil
}

// readInput reads path, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return b, nil
}

func decodeInput(cmd *cobra.Command, path string, dst any) error {
	b, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
