package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/types"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

// handleTrees handles /trees: POST builds and stores a tree, GET lists stored reports
func (s *Server) handleTrees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleBuildTree(w, r)
	case http.MethodGet:
		s.handleListTrees(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBuildTree(w http.ResponseWriter, r *http.Request) {
	var req types.BuildTreeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	hasher, err := s.hasherFor(req.HashType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	encoding, err := s.encodingFor(req.LeafEncoding)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, _, err := report.Build(req.Leaves, encoding, hasher)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SaveReport(rep); err != nil {
		s.logger.Sugar().Errorw("Failed to store report", "root", rep.RootHex(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store report")
		return
	}

	s.logger.Sugar().Infow("Built merkle tree",
		"root", rep.RootHex(),
		"leaves", len(rep.Leaves),
		"hash_type", rep.HashType,
	)

	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleListTrees(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListReports()
	if err != nil {
		s.logger.Sugar().Errorw("Failed to list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, types.ListTreesResponse{Trees: summaries})
}

// handleTree handles /trees/{root}
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	root := r.PathValue("root")

	switch r.Method {
	case http.MethodGet:
		rep, ok := s.loadReport(w, root)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, rep)

	case http.MethodDelete:
		if err := s.store.DeleteReport(root); err != nil {
			s.writeStoreError(w, root, err)
			return
		}
		s.logger.Sugar().Infow("Deleted report", "root", root)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProof handles /trees/{root}/proofs/{index}
func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid leaf index %q", r.PathValue("index")))
		return
	}

	rep, ok := s.loadReport(w, r.PathValue("root"))
	if !ok {
		return
	}

	entry, err := rep.Entry(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// handleVerify handles POST /verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req types.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.VerifyResponse{Error: fmt.Sprintf("failed to parse request: %v", err)})
		return
	}

	hasher, err := s.hasherFor(req.HashType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.VerifyResponse{Error: err.Error()})
		return
	}
	encoding, err := s.encodingFor(req.LeafEncoding)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.VerifyResponse{Error: err.Error()})
		return
	}
	leaf, err := util.EncodeLeaf(req.Leaf, encoding)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.VerifyResponse{Error: err.Error()})
		return
	}

	err = merkle.Verify(hasher, leaf, req.Proof, req.Root)

	var failure *merkle.VerificationFailure
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, types.VerifyResponse{Valid: true, ComputedRoot: req.Root})
	case errors.As(err, &failure):
		writeJSON(w, http.StatusOK, types.VerifyResponse{Valid: false, ComputedRoot: failure.Computed, Error: err.Error()})
	case errors.Is(err, merkle.ErrMalformedProof):
		writeJSON(w, http.StatusBadRequest, types.VerifyResponse{Valid: false, Error: err.Error()})
	default:
		s.logger.Sugar().Errorw("Unexpected verification error", "error", err)
		writeJSON(w, http.StatusInternalServerError, types.VerifyResponse{Valid: false, Error: "internal error"})
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.store.HealthCheck(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

// loadReport writes the error response itself and reports whether a report was found
func (s *Server) loadReport(w http.ResponseWriter, root string) (*report.Report, bool) {
	rep, err := s.store.LoadReport(root)
	if err != nil {
		s.writeStoreError(w, root, err)
		return nil, false
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no tree with root %s", root))
		return nil, false
	}
	return rep, true
}

// writeStoreError distinguishes a bad root in the path from a storage failure
func (s *Server) writeStoreError(w http.ResponseWriter, root string, err error) {
	if _, parseErr := persistence.RootKey(root); parseErr != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Sugar().Errorw("Report store error", "root", root, "error", err)
	writeError(w, http.StatusInternalServerError, "report store error")
}

func (s *Server) hasherFor(name string) (hashing.Hasher, error) {
	hashType := s.defaultHashType
	if name != "" {
		parsed, err := hashing.ParseHashType(name)
		if err != nil {
			return nil, err
		}
		hashType = parsed
	}
	return hashing.NewHasher(hashType)
}

func (s *Server) encodingFor(name string) (util.LeafEncoding, error) {
	if name == "" {
		return s.defaultEncoding, nil
	}
	return util.ParseLeafEncoding(name)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
