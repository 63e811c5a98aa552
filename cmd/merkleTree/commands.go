package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/config"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/logger"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/server"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

const shutdownTimeout = 10 * time.Second

// stdoutPath selects standard output instead of a file
const stdoutPath = "-"

// proofOutput is what the proof command prints
type proofOutput struct {
	Root         merkle.Digest     `json:"root"`
	HashType     hashing.HashType  `json:"hashType"`
	LeafEncoding util.LeafEncoding `json:"leafEncoding"`
	Entry        *report.LeafEntry `json:"entry"`
}

func newCommandLogger(cfg *config.ToolConfig) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Verbose})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

// buildCommand builds the tree, writes the report and optionally stores it
func buildCommand(c *cli.Context) error {
	cfg, err := parseToolConfig(c)
	if err != nil {
		return err
	}
	l, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	hasher, err := hashing.NewHasher(cfg.HashType)
	if err != nil {
		return err
	}

	values := util.ParseLeafArgs(c.Args().Slice())
	rep, tree, err := report.Build(values, cfg.LeafEncoding, hasher)
	if err != nil {
		return fmt.Errorf("failed to build merkle tree: %w", err)
	}

	l.Sugar().Debugw("Built merkle tree",
		"root", rep.RootHex(),
		"leaves", tree.LeafCount(),
		"height", tree.Height(),
		"hash_type", cfg.HashType,
	)

	// Nothing is written to disk unless the report could be stored.
	store, err := newReportStore(&cfg.Persistence, l)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		if err := store.SaveReport(rep); err != nil {
			return fmt.Errorf("failed to store report: %w", err)
		}
		l.Sugar().Infow("Stored merkle report", "root", rep.RootHex(), "persistence", cfg.Persistence.Type)
	}

	output := c.String("output")
	if err := writeReport(c.App.Writer, output, rep, format); err != nil {
		return err
	}

	if output != stdoutPath {
		l.Sugar().Infow("Wrote merkle report", "path", output, "format", format, "leaves", len(rep.Leaves))
		fmt.Fprintln(c.App.Writer, rep.RootHex())
	}

	return nil
}

func writeReport(stdout io.Writer, output string, rep *report.Report, format report.Format) error {
	if output == stdoutPath {
		return report.Write(stdout, rep, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := report.Write(f, rep, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// verifyCommand checks a leaf against a report's root using only the proof
func verifyCommand(c *cli.Context) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("report"))
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	rep, err := report.Read(f, format)
	_ = f.Close()
	if err != nil {
		return err
	}

	hasher, err := rep.Hasher()
	if err != nil {
		return err
	}

	value := c.String("leaf")
	var entry *report.LeafEntry
	if index := c.Int("index"); index >= 0 {
		entry, err = rep.Entry(index)
	} else {
		entry, err = rep.FindEntry(value)
	}
	if err != nil {
		return err
	}

	root := rep.Root
	if s := c.String("root"); s != "" {
		if root, err = merkle.ParseDigest(s); err != nil {
			return &merkle.MalformedProofError{Step: -1, Reason: fmt.Sprintf("invalid root: %v", err)}
		}
	}

	leaf, err := util.EncodeLeaf(value, rep.LeafEncoding)
	if err != nil {
		return err
	}

	if err := merkle.Verify(hasher, leaf, entry.Proof, root); err != nil {
		return fmt.Errorf("leaf %d: %w", entry.Index, err)
	}

	fmt.Fprintln(c.App.Writer, "VALID")
	return nil
}

// proofCommand prints the proof for one leaf of a stored report
func proofCommand(c *cli.Context) error {
	cfg, err := parseToolConfig(c)
	if err != nil {
		return err
	}
	if cfg.Persistence.Type == config.PersistenceTypeNone {
		return fmt.Errorf("proof needs a report store, set --persistence")
	}
	l, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	store, err := newReportStore(&cfg.Persistence, l)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer func() { _ = store.Close() }()

	root := c.String("root")
	rep, err := store.LoadReport(root)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if rep == nil {
		return fmt.Errorf("no stored report with root %s", root)
	}

	var entry *report.LeafEntry
	switch {
	case c.IsSet("leaf"):
		entry, err = rep.FindEntry(c.String("leaf"))
	case c.Int("index") >= 0:
		entry, err = rep.Entry(c.Int("index"))
	default:
		return fmt.Errorf("one of --leaf or --index is required")
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(proofOutput{
		Root:         rep.Root,
		HashType:     rep.HashType,
		LeafEncoding: rep.LeafEncoding,
		Entry:        entry,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode proof: %w", err)
	}

	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

// serveCommand runs the HTTP proof service until interrupted
func serveCommand(c *cli.Context) error {
	cfg, err := parseToolConfig(c)
	if err != nil {
		return err
	}
	l, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	store, err := newReportStore(&cfg.Persistence, l)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	if store == nil {
		l.Sugar().Warnw("No persistence configured, using in-memory report store")
		store = memory.NewMemoryPersistence()
	}
	defer func() { _ = store.Close() }()

	srv, err := server.NewServer(cfg, store, l)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	l.Sugar().Infow("Merkle proof server configuration",
		"port", cfg.Port,
		"hash_type", cfg.HashType,
		"leaf_encoding", cfg.LeafEncoding,
		"rate_limit", cfg.RateLimit,
		"rate_burst", cfg.RateBurst,
		"persistence", cfg.Persistence.Type,
	)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	l.Sugar().Info("Shutting down merkle proof server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
