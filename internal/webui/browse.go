package webui

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/marmos91/filegate/pkg/access"
	"github.com/marmos91/filegate/pkg/registry"
	"github.com/marmos91/filegate/pkg/safepath"
)

type browseData struct {
	MountName        string
	MountDescription string
	CurrentPath      string
	EntryPrefix      string
	ParentPath       string
	Entries          []Entry
	Username         string
	IsPublic         bool
	PermissionLabel  string
	CanUpload        bool
	CanDelete        bool
	CanRename        bool
	CanModify        bool
	Tree             *TreeNode
	OpenPaths        map[string]bool
	ReadmeName       string
	ReadmeHTML       template.HTML
}

// wildcardPath extracts the trailing wildcard from the route and normalizes
// it into a clean relative path.
func wildcardPath(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "*")
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return "", safepath.ErrInvalidPath
	}
	return safepath.NormalizeRelative(unescaped)
}

// confine maps a normalized relative path into the mount, logging
// containment violations distinctly: reaching one means the normalizer and
// the confinement check disagree about what escapes the root.
func (s *Server) confine(mount *registry.Mount, relative string) (string, error) {
	target, err := safepath.Confine(mount.Root, relative)
	if err != nil {
		var cerr *safepath.ContainmentError
		if errors.As(err, &cerr) {
			s.log.Error().
				Str("mount", mount.Name).
				Str("root", cerr.Root).
				Str("path", cerr.Path).
				Msg("path escaped mount root after normalization")
		}
		return "", err
	}
	return target, nil
}

// handleBrowse serves GET /browse/{mount}/*: files are downloaded,
// directories are listed.
//
// The permission gate runs before any path handling or filesystem access.
// A denied caller is redirected to the login page, and an unknown mount gets
// the same redirect so its existence is not leaked.
func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	mountName := chi.URLParam(r, "mount")
	mount, perm, id := s.mountPermission(r, mountName)

	if perm == nil || !perm.AllowsRead() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	relative, err := wildcardPath(r)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	target, err := s.confine(mount, relative)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !info.IsDir() {
		http.ServeFile(w, r, target)
		return
	}

	s.serveDirectory(w, mount, perm, id, relative, target)
}

// serveDirectory renders a directory listing with the sidebar tree and an
// optional readme preview.
func (s *Server) serveDirectory(w http.ResponseWriter, mount *registry.Mount, perm *access.Permission, id access.Identity, relative, target string) {
	entries, err := collectEntries(target)
	if err != nil {
		s.log.Error().Err(err).Str("mount", mount.Name).Msg("directory listing failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	current := displayPath(relative)

	data := browseData{
		MountName:        mount.Name,
		MountDescription: mount.Description,
		CurrentPath:      current,
		ParentPath:       parentPath(relative),
		Entries:          entries,
		Username:         id.Username,
		IsPublic:         mount.Public,
		PermissionLabel:  perm.String(),
		CanUpload:        perm.AllowsUpload(),
		CanDelete:        perm.AllowsDelete(),
		CanRename:        perm.AllowsRename(),
		CanModify:        perm.AllowsModify(),
		OpenPaths:        buildOpenPaths(current),
	}

	if relative != "" {
		data.EntryPrefix = relative + "/"
	}

	tree, err := buildDirectoryTree(mount.Root, "", 0)
	if err != nil {
		s.log.Warn().Err(err).Str("mount", mount.Name).Msg("directory tree build failed")
	} else {
		data.Tree = tree
	}

	if readme := findReadme(entries); readme != "" {
		if source, err := os.ReadFile(filepath.Join(target, readme)); err == nil {
			if html, err := renderMarkdown(source); err == nil {
				data.ReadmeName = readme
				data.ReadmeHTML = html
			}
		}
	}

	s.render(w, "browse.html", data)
}

// browseActions are the POST verbs accepted under /browse/{mount}/*.
var browseActions = map[string]bool{
	"upload": true,
	"delete": true,
	"rename": true,
}

// handleBrowseAction dispatches POST /browse/{mount}/{dir...}/{action}.
//
// Unlike reads, denied mutations answer 403: the caller already knows the
// mount exists from the listing that offered the form.
func (s *Server) handleBrowseAction(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	dir, action := splitAction(unescaped)
	if !browseActions[action] {
		http.NotFound(w, r)
		return
	}

	mountName := chi.URLParam(r, "mount")
	mount, perm, _ := s.mountPermission(r, mountName)
	if perm == nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	relative, err := safepath.NormalizeRelative(dir)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	switch action {
	case "upload":
		s.handleUpload(w, r, mount, perm, relative)
	case "delete":
		s.handleDelete(w, r, mount, perm, relative)
	case "rename":
		s.handleRename(w, r, mount, perm, relative)
	}
}

// splitAction separates the action verb from the directory part of the
// wildcard.
func splitAction(tail string) (dir, action string) {
	if idx := strings.LastIndex(tail, "/"); idx >= 0 {
		return tail[:idx], tail[idx+1:]
	}
	return "", tail
}

// handleUpload stores every multipart file part into the target directory.
// Part filenames go through sanitization; parts with unusable names are
// skipped rather than failing the whole upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, mount *registry.Mount, perm *access.Permission, relative string) {
	if !perm.AllowsUpload() {
		http.Error(w, "upload permission required", http.StatusForbidden)
		return
	}

	target, err := s.confine(mount, relative)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		http.Error(w, "target is not a directory", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "upload failed", http.StatusBadRequest)
			return
		}

		name, err := safepath.SanitizeFilename(part.FileName())
		if err != nil {
			// Field without a usable filename, skip it
			continue
		}

		if err := writeUpload(filepath.Join(target, name), part); err != nil {
			s.log.Error().Err(err).Str("mount", mount.Name).Str("file", name).Msg("upload write failed")
			http.Error(w, "upload failed", http.StatusInternalServerError)
			return
		}

		s.log.Info().Str("mount", mount.Name).Str("file", name).Msg("file uploaded")
	}

	s.redirectToDir(w, r, mount.Name, relative)
}

func writeUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// handleDelete removes a file or directory. The target must live inside the
// directory the form was rendered for, so a stale or forged form cannot
// reach elsewhere in the mount.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, mount *registry.Mount, perm *access.Permission, relative string) {
	if !perm.AllowsDelete() {
		http.Error(w, "delete permission required", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	targetRelative, err := safepath.NormalizeRelative(r.PostFormValue("target_path"))
	if err != nil || targetRelative == "" {
		http.Error(w, "invalid target path", http.StatusBadRequest)
		return
	}

	currentDir, err := s.confine(mount, relative)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	target, err := s.confine(mount, targetRelative)
	if err != nil {
		http.Error(w, "invalid target path", http.StatusBadRequest)
		return
	}

	if !safepath.Contains(currentDir, target) {
		http.Error(w, "target outside directory", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil {
		s.log.Error().Err(err).Str("mount", mount.Name).Str("target", targetRelative).Msg("delete failed")
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("mount", mount.Name).Str("target", targetRelative).Msg("entry deleted")
	s.redirectToDir(w, r, mount.Name, relative)
}

// handleRename renames a direct child of the current directory to a
// sanitized new name.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request, mount *registry.Mount, perm *access.Permission, relative string) {
	if !perm.AllowsRename() {
		http.Error(w, "rename permission required", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	targetRelative, err := safepath.NormalizeRelative(r.PostFormValue("target_path"))
	if err != nil || targetRelative == "" {
		http.Error(w, "invalid target path", http.StatusBadRequest)
		return
	}

	newName, err := safepath.SanitizeFilename(r.PostFormValue("new_name"))
	if err != nil {
		http.Error(w, "invalid new name", http.StatusBadRequest)
		return
	}

	currentDir, err := s.confine(mount, relative)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	source, err := s.confine(mount, targetRelative)
	if err != nil {
		http.Error(w, "invalid target path", http.StatusBadRequest)
		return
	}

	if filepath.Dir(source) != currentDir {
		http.Error(w, "target outside directory", http.StatusBadRequest)
		return
	}

	destination := filepath.Join(currentDir, newName)
	if err := os.Rename(source, destination); err != nil {
		s.log.Error().Err(err).Str("mount", mount.Name).Str("target", targetRelative).Msg("rename failed")
		http.Error(w, "rename failed", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("mount", mount.Name).Str("target", targetRelative).Str("new_name", newName).Msg("entry renamed")
	s.redirectToDir(w, r, mount.Name, relative)
}

// redirectToDir sends the browser back to the directory listing.
func (s *Server) redirectToDir(w http.ResponseWriter, r *http.Request, mountName, relative string) {
	http.Redirect(w, r, "/browse/"+mountName+"/"+displayPath(relative), http.StatusFound)
}

type editData struct {
	MountName  string
	TargetPath string
	ParentPath string
	Filename   string
	Content    string
}

// resolveEditTarget runs the shared permission and path pipeline of the edit
// handlers. It writes the error response itself and returns ok=false on any
// failure.
func (s *Server) resolveEditTarget(w http.ResponseWriter, r *http.Request) (target, relative, mountName string, ok bool) {
	mountName = chi.URLParam(r, "mount")
	mount, perm, _ := s.mountPermission(r, mountName)
	if perm == nil || !perm.AllowsModify() {
		http.Error(w, "modify permission required", http.StatusForbidden)
		return "", "", "", false
	}

	relative, err := wildcardPath(r)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return "", "", "", false
	}

	target, err = s.confine(mount, relative)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return "", "", "", false
	}

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		http.Error(w, "target is not a file", http.StatusBadRequest)
		return "", "", "", false
	}

	return target, relative, mountName, true
}

// handleEditPage serves the text editor for a file.
func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	target, relative, mountName, ok := s.resolveEditTarget(w, r)
	if !ok {
		return
	}

	content, err := os.ReadFile(target)
	if err != nil {
		s.log.Error().Err(err).Str("mount", mountName).Msg("edit read failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, "edit.html", editData{
		MountName:  mountName,
		TargetPath: relative,
		ParentPath: parentPath(relative),
		Filename:   filepath.Base(target),
		Content:    string(content),
	})
}

// handleEditSave writes the posted content back to the file and returns to
// the parent directory listing.
func (s *Server) handleEditSave(w http.ResponseWriter, r *http.Request) {
	target, relative, mountName, ok := s.resolveEditTarget(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if err := os.WriteFile(target, []byte(r.PostFormValue("content")), 0o644); err != nil {
		s.log.Error().Err(err).Str("mount", mountName).Msg("edit write failed")
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("mount", mountName).Str("path", relative).Msg("file edited")
	s.redirectToDir(w, r, mountName, parentPath(relative))
}
