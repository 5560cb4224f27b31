package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	rdsutils "github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the database connection pool using the DATABASE_URL environment variable
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// RDSConfig carries the settings for IAM-authenticated RDS access, used when
// the deployment has no static database password.
type RDSConfig struct {
	Profile  string // Primarily for dev purposes
	Region   string
	Endpoint string // e.g. land-proforma.abc123xyz.us-east-1.rds.amazonaws.com
	Port     int
	User     string
	DBName   string
}

// InitDBWithIAM initializes the pool against RDS using an IAM auth token as
// the password. The token is generated locally from the AWS credentials, not
// via an API call.
func InitDBWithIAM(ctx context.Context, cfg RDSConfig) error {
	var err error
	once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.Profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
		}
		awsCfg, loadErr := config.LoadDefaultConfig(ctx, opts...)
		if loadErr != nil {
			err = fmt.Errorf("failed to load AWS config for RDS: %w", loadErr)
			return
		}

		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		endpointWithPort := fmt.Sprintf("%s:%d", cfg.Endpoint, port)
		authToken, tokenErr := rdsutils.BuildAuthToken(ctx, endpointWithPort, cfg.Region, cfg.User, awsCfg.Credentials)
		if tokenErr != nil {
			err = fmt.Errorf("failed to create authentication token: %w", tokenErr)
			return
		}

		connStr := fmt.Sprintf(
			"postgres://%s:%s@%s/%s?sslmode=require",
			url.QueryEscape(cfg.User),
			url.QueryEscape(authToken),
			endpointWithPort,
			url.QueryEscape(cfg.DBName),
		)

		poolCfg, parseErr := pgxpool.ParseConfig(connStr)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
	})
	return err
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
