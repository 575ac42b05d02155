package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/persistence/file"
	"github.com/tradewind-io/tradewind/pkg/persistence/postgresql"
)

// NewPersistence selects a storage backend from the database URL scheme.
// "postgres://" and "postgresql://" use PostgreSQL; anything else is treated
// as a file-backed root directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgresql persistence: %w", err))
		}

		return persist
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
