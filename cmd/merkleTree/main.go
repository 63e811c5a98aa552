package main

import (
	"errors"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/config"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
)

// Exit codes let scripts tell a failed verification apart from bad input.
const (
	exitCodeError              = 1
	exitCodeVerificationFailed = 2
	exitCodeMalformedProof     = 3
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Printf("Application error: %v", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, merkle.ErrVerificationFailed):
		return exitCodeVerificationFailed
	case errors.Is(err, merkle.ErrMalformedProof):
		return exitCodeMalformedProof
	default:
		return exitCodeError
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkle-tree",
		Usage: "Build merkle trees, generate inclusion proofs and verify them",
		Description: `Builds a binary merkle tree over an ordered list of leaves and writes a report
holding the root and an inclusion proof for every leaf.

Odd levels are completed by pairing the last node with itself. Proofs can be
verified offline against the root, or served over HTTP.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "hash",
				Usage:   "Hash function: " + hashing.SupportedHashTypesString(),
				Value:   hashing.DefaultHashType.String(),
				EnvVars: []string{config.EnvMerkleHashType},
			},
			&cli.StringFlag{
				Name:    "leaf-encoding",
				Usage:   "How leaf values are turned into bytes: raw, hex, abi",
				Value:   "raw",
				EnvVars: []string{config.EnvMerkleLeafEncoding},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvMerkleVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build a tree and write the root and every proof",
				ArgsUsage: "[a,b,c] | <leaf> [leaf...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Report file, - for stdout",
						Value:   config.DefaultReportPath,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: text, json, msgpack",
						Value:   "text",
					},
				}, persistenceFlags()...),
				Action: buildCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a leaf against a report's root using the proof in the report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "report",
						Aliases:  []string{"r"},
						Usage:    "Report file written by build",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: text, json, msgpack",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:     "leaf",
						Usage:    "Leaf value to verify",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "index",
						Usage: "Use the proof at this index instead of looking the leaf up by value",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Verify against this root (hex) instead of the report's root",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "proof",
				Usage: "Print the proof for a leaf of a stored report",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "root",
						Usage:    "Root (hex) of the stored report",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "leaf",
						Usage: "Leaf value, the lowest matching index is used",
					},
					&cli.IntFlag{
						Name:  "index",
						Usage: "Leaf index, used when --leaf is not given",
						Value: -1,
					},
				}, persistenceFlags()...),
				Action: proofCommand,
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP proof service",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP server port",
						Value:   config.DefaultPort,
						EnvVars: []string{config.EnvMerklePort},
					},
					&cli.Float64Flag{
						Name:    "rate-limit",
						Usage:   "Requests per second, 0 disables limiting",
						Value:   config.DefaultRateLimit,
						EnvVars: []string{config.EnvMerkleRateLimit},
					},
					&cli.IntFlag{
						Name:    "rate-burst",
						Usage:   "Maximum burst of requests",
						Value:   config.DefaultRateBurst,
						EnvVars: []string{config.EnvMerkleRateBurst},
					},
				}, persistenceFlags()...),
				Action: serveCommand,
			},
		},
	}
}
