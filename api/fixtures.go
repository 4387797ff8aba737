package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qrlab/qrgen/qr"
)

func (s *Server) handleListFixtures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Manifest.Artifacts())
}

func (s *Server) handleGetFixture(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	art, ok := s.Manifest.Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, "no such fixture")
		return
	}

	// Only manifest entries are served, and only by their base name, so a
	// request can never reach outside the output directory.
	http.ServeFile(w, r, filepath.Join(s.OutputDir, filepath.Base(art.Name)))
}

type generateRequest struct {
	Payload    string `json:"payload"`
	Name       string `json:"name,omitempty"`
	Version    int    `json:"version,omitempty"`
	Level      string `json:"level,omitempty"`
	ModuleSize int    `json:"module_size,omitempty"`
	Border     *int   `json:"border,omitempty"`
	Exact      bool   `json:"exact,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Payload == "" {
		writeError(w, http.StatusBadRequest, "payload is required")
		return
	}

	cfg := s.Defaults
	cfg.Fit = !req.Exact
	if req.Version != 0 {
		cfg.Version = req.Version
	}
	if req.Level != "" {
		lvl, err := qr.ParseLevel(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Level = lvl
	}
	if req.ModuleSize != 0 {
		cfg.ModuleSize = req.ModuleSize
	}
	if req.Border != nil {
		cfg.Border = *req.Border
	}

	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cfg.ModuleSize > maxModuleSize || cfg.Border > maxBorder {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("module_size is limited to %d and border to %d", maxModuleSize, maxBorder))
		return
	}

	name := req.Name
	if name == "" {
		name = "qr-" + uuid.New().String() + ".png"
	}
	if name != filepath.Base(name) || filepath.Ext(name) != ".png" {
		writeError(w, http.StatusBadRequest, "name must be a plain .png file name")
		return
	}

	art, err := s.Gen.Generate(req.Payload, cfg, name)
	if err != nil {
		if errors.Is(err, qr.ErrPayloadTooLarge) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, art)
}
