// ABOUTME: HTTP surface for linkdeck: routes, gateway wiring, and save handling
// ABOUTME: Translates access gateway decisions into pages, redirects, and cookies

package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/links"
)

// Server handles all linkdeck HTTP routes
type Server struct {
	gateway  *access.Gateway
	store    links.Store
	title    string
	intro    template.HTML
	maxLinks int
	logger   *slog.Logger
}

// New creates a server. The site intro Markdown is rendered once here, not
// per request.
func New(gw *access.Gateway, store links.Store, cfg *config.Config) (*Server, error) {
	s := &Server{
		gateway:  gw,
		store:    store,
		title:    cfg.Site.Title,
		maxLinks: cfg.Links.MaxCount,
		logger:   slog.Default().With("component", "web"),
	}

	if cfg.Site.Intro != "" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(cfg.Site.Intro), &buf); err != nil {
			return nil, fmt.Errorf("rendering site intro: %w", err)
		}
		s.intro = template.HTML(buf.String())
	}

	return s, nil
}

// RegisterRoutes registers all routes on the given mux. Paths outside this
// set fall through to the mux's own 404.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /{$}", s.handleViewSubmit)
	mux.HandleFunc("GET /edit", s.handleEditPage)
	mux.HandleFunc("POST /edit", s.handleEditSubmit)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("GET /success", s.handleSuccess)
	mux.HandleFunc("GET /error", s.handleError)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.logger.Info("routes registered")
}

// gatewayRequest projects an HTTP request into the gateway's input shape
func gatewayRequest(r *http.Request, path string) access.Request {
	return access.Request{
		Method:       r.Method,
		Path:         path,
		Query:        r.URL.Query(),
		CookieHeader: r.Header.Get("Cookie"),
		FormToken:    r.PostFormValue(access.TokenField),
	}
}

// applyCookie mints the session cookie a gateway result asked for, if any
func applyCookie(w http.ResponseWriter, res access.Result) {
	if res.Cookie != nil {
		access.WriteSession(w, res.Cookie.Tier, res.Cookie.Token, res.Cookie.MaxAge)
	}
}

// handleHome serves the view-tier entry point: the list page, the view
// challenge, or a bootstrap redirect.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	res := s.gateway.Evaluate(gatewayRequest(r, access.RootPath))

	switch res.Decision {
	case access.Bootstrap:
		applyCookie(w, res)
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)

	case access.GrantView:
		list := s.loadList(r, &res)
		s.renderListPage(w, list, r.URL.Query().Get("status"), res.Message)

	default:
		s.renderUnlockPage(w, access.TierView, challengeMessage(r, res), access.RootPath)
	}
}

// handleEditPage serves the edit-tier entry point: the editor, the edit
// challenge, or a bootstrap redirect.
func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	res := s.gateway.Evaluate(gatewayRequest(r, access.EditPath))

	switch res.Decision {
	case access.Bootstrap:
		applyCookie(w, res)
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)

	case access.GrantEdit:
		list := s.loadList(r, &res)
		s.renderEditorPage(w, list, r.URL.Query().Get("status"), res.Message)

	default:
		s.renderUnlockPage(w, access.TierEdit, challengeMessage(r, res), nextPath(r))
	}
}

// handleEditSubmit verifies a submitted edit credential. Success mints the
// session cookie and redirects; failure re-renders the challenge inline
// with no cookie set.
func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderUnlockPage(w, access.TierEdit, "Invalid form data", nextPath(r))
		return
	}

	res := s.gateway.Evaluate(gatewayRequest(r, access.EditPath))

	if res.Decision == access.GrantEdit {
		applyCookie(w, res)
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
		return
	}

	s.renderUnlockPage(w, access.TierEdit, res.Message, nextPath(r))
}

// handleViewSubmit verifies a submitted view credential, mirroring the
// edit-tier flow: success mints the session cookie and redirects to the
// list page; failure re-renders the challenge inline with no cookie set.
func (s *Server) handleViewSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderUnlockPage(w, access.TierView, "Invalid form data", access.RootPath)
		return
	}

	res := s.gateway.Evaluate(gatewayRequest(r, access.RootPath))

	if res.Decision == access.GrantView {
		applyCookie(w, res)
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
		return
	}

	s.renderUnlockPage(w, access.TierView, res.Message, access.RootPath)
}

// handleSave authorizes and applies a replacement link list. Authorization
// accepts a live edit session cookie or a raw token in the form body;
// without either proof the request ends as a bare 403.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectError(w, r, "Could not parse submission: "+err.Error(), access.EditPath)
		return
	}

	res := s.gateway.Evaluate(gatewayRequest(r, access.SavePath))
	if res.Decision == access.Deny {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	submitted, err := parseSubmission(r.PostForm, s.maxLinks)
	if err != nil {
		s.redirectError(w, r, "Invalid submission: "+err.Error(), access.EditPath)
		return
	}

	list := links.Reconcile(submitted)
	if err := s.store.Put(r.Context(), list); err != nil {
		s.logger.Error("failed to save link list", "error", err)
		s.redirectError(w, r, "Save failed: "+err.Error(), access.EditPath)
		return
	}

	s.logger.Info("link list saved", "count", len(list))
	applyCookie(w, res)
	http.Redirect(w, r, res.RedirectTo+"?status="+url.QueryEscape("All changes saved."), http.StatusSeeOther)
}

// handleSuccess renders the auto-returning success page
func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	s.renderStatusPage(w, "All changes saved.", nextPath(r), true)
}

// handleError renders the auto-returning failure page
func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("status")
	if msg == "" {
		msg = "An unknown error occurred."
	}
	s.renderStatusPage(w, msg, nextPath(r), false)
}

// handleHealthz reports liveness
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// loadList reads the stored list for rendering. A missing list is simply
// empty; any other read failure degrades to an empty list with an inline
// message rather than aborting the page.
func (s *Server) loadList(r *http.Request, res *access.Result) []links.Link {
	list, err := s.store.Get(r.Context())
	if err != nil {
		if !errors.Is(err, links.ErrNotFound) {
			s.logger.Error("failed to load link list", "error", err)
			res.Message = "Could not load links, showing an empty list."
		}
		return nil
	}
	return list
}

// redirectError bounces to the error page with a truncated diagnostic so
// backing-store internals never leak wholesale into the URL.
func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, msg, next string) {
	target := "/error?status=" + url.QueryEscape(truncate(msg, 50)) + "&next=" + url.QueryEscape(next)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// challengeMessage picks the inline message for a challenge page: the
// gateway's verdict message when present, otherwise a status carried back
// through the query string on retry.
func challengeMessage(r *http.Request, res access.Result) string {
	if res.Message != "" {
		return res.Message
	}
	return r.URL.Query().Get("status")
}

// nextPath returns the sanitized next parameter, defaulting to the root.
// Only same-site relative paths are honored; protocol-relative URLs
// ("//host") are rejected along with absolute ones.
func nextPath(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return access.RootPath
	}
	return next
}

// truncate cuts a message to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
