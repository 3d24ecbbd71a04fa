package server

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// outputFile describes one generated PDF in the output listing.
type outputFile struct {
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// handleListOutput lists the generated PDFs, newest first.
func (s *Server) handleListOutput(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.cfg.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			s.jsonResponse(w, http.StatusOK, map[string]any{"total": 0, "files": []outputFile{}})
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Reading output directory: "+err.Error())
		return
	}

	files := make([]outputFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, outputFile{
			Filename:    entry.Name(),
			DownloadURL: "/download/" + entry.Name(),
			SizeBytes:   info.Size(),
			ModifiedAt:  info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModifiedAt.After(files[j].ModifiedAt) })

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total": len(files),
		"files": files,
	})
}

// handleDownload serves one generated PDF. The filename must be a bare name
// inside the output directory; anything that walks out of it is rejected.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		s.errorResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}
	if !strings.HasSuffix(filename, ".pdf") {
		s.errorResponse(w, http.StatusBadRequest, "Only PDF downloads are served")
		return
	}

	path := filepath.Join(s.cfg.OutputDir, filename)
	if _, err := os.Stat(path); err != nil {
		s.errorResponse(w, http.StatusNotFound, "File not found: "+filename)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	http.ServeFile(w, r, path)
}
