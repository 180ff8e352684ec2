package webui

import (
	"html/template"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/marmos91/filegate/pkg/authn"
)

// MountSummary is one entry of the landing page mount listing.
type MountSummary struct {
	Name        string
	Description string
	Public      bool
}

type indexData struct {
	Title       string
	Description string
	Markdown    template.HTML
	Mounts      []MountSummary
	Username    string
}

// handleIndex renders the landing page: the optional markdown front matter
// plus the mounts the caller can read.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.identity(r)

	data := indexData{
		Title:       s.cfg.MainPage.Title,
		Description: s.cfg.MainPage.Description,
		Username:    id.Username,
	}

	if s.cfg.MainPage.MarkdownFile != "" {
		if source, err := os.ReadFile(s.cfg.MainPage.MarkdownFile); err == nil {
			if html, err := renderMarkdown(source); err == nil {
				data.Markdown = html
			} else {
				s.log.Warn().Err(err).Msg("main page markdown rendering failed")
			}
		}
	}

	for _, mount := range s.reg.Visible(id) {
		data.Mounts = append(data.Mounts, MountSummary{
			Name:        mount.Name,
			Description: mount.Description,
			Public:      mount.Public,
		})
	}

	s.render(w, "index.html", data)
}

type loginData struct {
	Error bool
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", loginData{})
}

// handleLogin verifies the posted credentials and issues a session cookie.
// Failures render the login page again with a generic error, without
// revealing whether the username exists.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow(clientAddr(r)) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("login attempts throttled")
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, ok := s.cfg.Users[username]
	if !ok || user.Password == "" || !authn.Verify(password, user.Password, user.Algorithm) {
		s.log.Info().Str("username", username).Msg("login failed")
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, "login.html", loginData{Error: true})
		return
	}

	sess, err := s.sessions.Create(username, s.cfg.Sessions.TTL)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(s.cfg.Sessions.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Sessions.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	s.log.Info().Str("username", username).Msg("login succeeded")
	http.Redirect(w, r, "/", http.StatusFound)
}

// clientAddr returns the remote host without the ephemeral port, so
// throttling buckets track clients rather than connections.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleLogout deletes the session and expires the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(cookie.Value); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete session")
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
