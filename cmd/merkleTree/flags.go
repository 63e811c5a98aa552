package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/config"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

// persistenceFlags are shared by every command that touches the report store
func persistenceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "persistence",
			Usage:   "Report store: " + config.GetSupportedPersistenceTypesString(),
			Value:   config.PersistenceTypeNone.String(),
			EnvVars: []string{config.EnvMerklePersistenceType},
		},
		&cli.StringFlag{
			Name:    "data-path",
			Usage:   "Badger data directory",
			Value:   config.DefaultDataPath,
			EnvVars: []string{config.EnvMerkleDataPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis address (host:port)",
			EnvVars: []string{config.EnvMerkleRedisAddress},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{config.EnvMerkleRedisPassword},
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   fmt.Sprintf("Redis database number (0-%d)", config.MaxRedisDB),
			EnvVars: []string{config.EnvMerkleRedisDB},
		},
		&cli.StringFlag{
			Name:    "redis-key-prefix",
			Usage:   "Prefix for every Redis key",
			EnvVars: []string{config.EnvMerkleRedisKeyPrefix},
		},
	}
}

// parseToolConfig builds the tool configuration from flags and environment.
// Flags a command does not define keep their defaults.
func parseToolConfig(c *cli.Context) (*config.ToolConfig, error) {
	cfg := config.NewDefaultToolConfig()
	cfg.Verbose = c.Bool("verbose")

	hashType, err := hashing.ParseHashType(c.String("hash"))
	if err != nil {
		return nil, err
	}
	cfg.HashType = hashType

	encoding, err := util.ParseLeafEncoding(c.String("leaf-encoding"))
	if err != nil {
		return nil, err
	}
	cfg.LeafEncoding = encoding

	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("rate-limit") {
		cfg.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("rate-burst") {
		cfg.RateBurst = c.Int("rate-burst")
	}

	persistenceType, err := config.ParsePersistenceType(c.String("persistence"))
	if err != nil {
		return nil, err
	}
	cfg.Persistence.Type = persistenceType
	if path := c.String("data-path"); path != "" {
		cfg.Persistence.DataPath = path
	}
	cfg.Persistence.RedisAddress = c.String("redis-address")
	cfg.Persistence.RedisPassword = c.String("redis-password")
	cfg.Persistence.RedisDB = c.Int("redis-db")
	cfg.Persistence.RedisKeyPrefix = c.String("redis-key-prefix")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
