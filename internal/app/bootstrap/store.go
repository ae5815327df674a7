package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// Lead store backends accepted by LEAD_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// BuildLeadRepository connects the backend named by cfg.LeadStore. The
// returned cleanup func is never nil.
func BuildLeadRepository(ctx context.Context, cfg *appconfig.Config, awsp *awsProvider, logger *logging.Logger) (leads.Repository, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.LeadStore)) {
	case "", StoreMemory:
		if cfg.IsProduction() {
			logger.Warn("using in-memory lead store in production, leads will not survive a restart")
		}
		return leads.NewInMemoryRepository(), noop, nil

	case StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("bootstrap: DATABASE_URL is required for the postgres lead store")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("lead store ready", "backend", StorePostgres)
		return leads.NewPostgresRepository(pool), pool.Close, nil

	case StoreDynamoDB:
		awsCfg, err := awsp.Get(ctx)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("lead store ready", "backend", StoreDynamoDB, "table", cfg.LeadsTable)
		return leads.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.LeadsTable, logger), noop, nil

	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown LEAD_STORE %q", cfg.LeadStore)
	}
}
