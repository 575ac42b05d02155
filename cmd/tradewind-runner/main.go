// Package main provides a one-shot pipeline runner for local development and
// operations.
package main

import (
	"context"
	"os"

	cmdpkg "github.com/tradewind-io/tradewind/pkg/cmd"
	"github.com/tradewind-io/tradewind/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	logger := log.WithModule("runner")

	command := &cli.Command{
		Name:                  "tradewind-runner",
		Usage:                 "Execute one pipeline run from the command line",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow-id",
				Usage:    "ID of the workflow to execute",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:  "user-id",
				Usage: "User the run is attributed to (enables risk accounting)",
			},
			&cli.StringFlag{
				Name:  "start-from",
				Usage: "Stage ID to start from",
			},
			&cli.StringFlag{
				Name:  "stop-at",
				Usage: "Stage ID to stop at",
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for shared risk state (in-memory when unset)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "plugins-path",
				Usage:   "Path to the directory containing agent plugins",
				Sources: cli.EnvVars("PLUGINS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			registry := cmdpkg.NewRegistry(logger, command.String("plugins-path"))

			persistence := cmdpkg.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			return runWorkflow(ctx, logger, registry, persistence, runOptions{
				workflowID: command.String("workflow-id"),
				userID:     command.String("user-id"),
				startFrom:  command.String("start-from"),
				stopAt:     command.String("stop-at"),
				redisURL:   command.String("redis-url"),
			})
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}
