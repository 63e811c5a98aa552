package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
)

// Key prefixes for namespacing
const (
	keyPrefixReport      = "report:"
	keyPrefixSummary     = "summary:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerPersistence is a disk-backed report store using Badger.
// Each report is written together with its summary so listing never decodes proofs.
type BadgerPersistence struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewBadgerPersistence creates a new Badger-backed persistence layer.
// The database is opened at the specified path with SyncWrites enabled for durability.
// A background goroutine is started for garbage collection.
func NewBadgerPersistence(dataPath string, logger *zap.Logger) (*BadgerPersistence, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bp := &BadgerPersistence{
		db:     db,
		logger: logger,
	}

	if err := bp.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bp.gcCancel = cancel
	bp.gcWg.Add(1)
	go bp.runGC(ctx)

	logger.Sugar().Infow("Badger report store initialized", "path", absPath)

	return bp, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerPersistence) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}

		return nil
	})
}

// runGC runs periodic value log garbage collection in the background
func (b *BadgerPersistence) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// SaveReport persists a report and its summary in one transaction
func (b *BadgerPersistence) SaveReport(r *report.Report) error {
	if r == nil {
		return fmt.Errorf("cannot save nil Report")
	}
	key, err := persistence.RootKey(r.RootHex())
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalReport(r)
	if err != nil {
		return fmt.Errorf("failed to marshal Report: %w", err)
	}
	summary, err := persistence.MarshalReportSummary(persistence.Summarize(r))
	if err != nil {
		return fmt.Errorf("failed to marshal ReportSummary: %w", err)
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set([]byte(keyPrefixReport+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyPrefixSummary+key), summary)
	})
}

// LoadReport retrieves a report by root
func (b *BadgerPersistence) LoadReport(root string) (*report.Report, error) {
	key, err := persistence.RootKey(root)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	var data []byte
	err = b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyPrefixReport + key))
		if err == badgerdb.ErrKeyNotFound {
			return nil // Not found is not an error
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...) // Copy value
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Report: %w", err)
	}

	if data == nil {
		return nil, nil
	}

	r, err := persistence.UnmarshalReport(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Report: %w", err)
	}

	return r, nil
}

// ListReports returns all report summaries sorted by creation time
func (b *BadgerPersistence) ListReports() ([]*persistence.ReportSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	summaries := make([]*persistence.ReportSummary, 0)

	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixSummary)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			summary, err := persistence.UnmarshalReportSummary(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal ReportSummary, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}

			summaries = append(summaries, summary)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list Reports: %w", err)
	}

	persistence.SortSummaries(summaries)

	return summaries, nil
}

// DeleteReport removes a report and its summary
func (b *BadgerPersistence) DeleteReport(root string) error {
	key, err := persistence.RootKey(root)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Delete([]byte(keyPrefixReport + key)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyPrefixSummary + key))
	})
}

// Close shuts down the persistence layer
func (b *BadgerPersistence) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger report store closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (b *BadgerPersistence) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}

var _ persistence.IReportPersistence = (*BadgerPersistence)(nil)
