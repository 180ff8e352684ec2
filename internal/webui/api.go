package webui

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zip"
	"github.com/marmos91/filegate/pkg/safepath"
)

type treeItem struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  *int64 `json:"size"`
}

type treeResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Items   []treeItem `json:"items,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleTree serves GET /api/{mount}/tree/*: a one-level directory listing
// for lazy loading of the sidebar tree.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	mountName := chi.URLParam(r, "mount")
	mount, perm, _ := s.mountPermission(r, mountName)

	if perm == nil || !perm.AllowsRead() {
		writeJSON(w, http.StatusForbidden, treeResponse{Success: false, Error: "access denied"})
		return
	}

	relative, err := wildcardPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, treeResponse{Success: false, Error: "invalid path"})
		return
	}

	target, err := s.confine(mount, relative)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, treeResponse{Success: false, Error: "invalid path"})
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		writeJSON(w, http.StatusNotFound, treeResponse{Success: false, Error: "directory not found"})
		return
	}
	if !info.IsDir() {
		writeJSON(w, http.StatusBadRequest, treeResponse{Success: false, Error: "path is not a directory"})
		return
	}

	entries, err := collectEntries(target)
	if err != nil {
		s.log.Error().Err(err).Str("mount", mountName).Msg("tree listing failed")
		writeJSON(w, http.StatusInternalServerError, treeResponse{Success: false, Error: "failed to read directory"})
		return
	}

	items := make([]treeItem, 0, len(entries))
	for _, entry := range entries {
		item := treeItem{
			Name:  entry.Name,
			IsDir: entry.IsDir,
		}
		if relative == "" {
			item.Path = entry.Name
		} else {
			item.Path = relative + "/" + entry.Name
		}
		if !entry.IsDir {
			size := entry.Size
			item.Size = &size
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, treeResponse{Success: true, Items: items})
}

type zipRequest struct {
	Paths []string `json:"paths"`
}

// handleZip serves POST /api/{mount}/zip: an archive of the selected files,
// streamed to the response.
//
// Every requested path goes through the same normalize-and-confine pipeline
// as browsing. Paths that fail normalization, escape the mount, or are not
// regular files are skipped instead of failing the archive.
func (s *Server) handleZip(w http.ResponseWriter, r *http.Request) {
	mountName := chi.URLParam(r, "mount")
	mount, perm, _ := s.mountPermission(r, mountName)

	if perm == nil || !perm.AllowsRead() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req zipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		http.Error(w, "no paths selected", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+mountName+`_files.zip"`)

	zw := zip.NewWriter(w)
	for _, raw := range req.Paths {
		relative, err := safepath.NormalizeRelative(raw)
		if err != nil || relative == "" {
			continue
		}

		target, err := s.confine(mount, relative)
		if err != nil {
			continue
		}

		info, err := os.Stat(target)
		if err != nil || info.IsDir() {
			continue
		}

		if err := addZipEntry(zw, target, relative); err != nil {
			s.log.Warn().Err(err).Str("mount", mountName).Str("path", relative).Msg("zip entry skipped")
		}
	}

	if err := zw.Close(); err != nil {
		s.log.Error().Err(err).Str("mount", mountName).Msg("zip finalization failed")
	}
}

func addZipEntry(zw *zip.Writer, target, name string) error {
	src, err := os.Open(target)
	if err != nil {
		return err
	}
	defer src.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, src)
	return err
}
