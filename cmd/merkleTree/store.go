package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/config"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence/redis"
)

// newReportStore opens the configured report store. It returns nil for PersistenceTypeNone.
func newReportStore(cfg *config.PersistenceConfig, l *zap.Logger) (persistence.IReportPersistence, error) {
	switch cfg.Type {
	case config.PersistenceTypeNone, "":
		return nil, nil
	case config.PersistenceTypeMemory:
		l.Sugar().Warnw("Using in-memory report store, reports are lost on exit")
		return memory.NewMemoryPersistence(), nil
	case config.PersistenceTypeBadger:
		store, err := badger.NewBadgerPersistence(cfg.DataPath, l)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.PersistenceTypeRedis:
		store, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, l)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Type)
	}
}
