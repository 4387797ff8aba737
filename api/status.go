package api

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status    string `json:"status"`
	Artifacts int    `json:"artifacts"`
	OutputDir string `json:"output_dir"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Artifacts: s.Manifest.Len(),
		OutputDir: s.OutputDir,
		Uptime:    time.Since(s.Started).Truncate(time.Second).String(),
		Version:   s.Version,
	})
}
