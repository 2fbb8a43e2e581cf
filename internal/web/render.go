// ABOUTME: Template rendering functions for linkdeck pages
// ABOUTME: Loads templates from the embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/links"
)

// Template data types
type listData struct {
	Title  string
	Intro  template.HTML
	Links  []links.Link
	Status string
	Error  string
}

type editorData struct {
	Title    string
	Links    []links.Link
	MaxCount int
	Status   string
	Error    string
}

type unlockData struct {
	Title  string
	Label  string
	Action string
	Next   string
	Error  string
}

type statusData struct {
	Title   string
	Message string
	Target  string
	Success bool
}

// renderListPage renders the public link list
func (s *Server) renderListPage(w http.ResponseWriter, list []links.Link, status, errMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/list.html"))

	data := listData{
		Title:  s.title,
		Intro:  s.intro,
		Links:  list,
		Status: status,
		Error:  errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render list page", "error", err)
	}
}

// renderEditorPage renders the link editor
func (s *Server) renderEditorPage(w http.ResponseWriter, list []links.Link, status, errMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/editor.html"))

	data := editorData{
		Title:    "Edit " + s.title,
		Links:    list,
		MaxCount: s.maxLinks,
		Status:   status,
		Error:    errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render editor page", "error", err)
	}
}

// renderUnlockPage renders the credential entry page for a tier
func (s *Server) renderUnlockPage(w http.ResponseWriter, tier access.Tier, errMsg, next string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/unlock.html"))

	// Each tier's form posts back to its own entry path
	label := "View key"
	action := access.RootPath
	if tier.Name == access.TierEdit.Name {
		label = "Edit key"
		action = access.EditPath + "?next=" + url.QueryEscape(next)
	}

	data := unlockData{
		Title:  "Unlock " + s.title,
		Label:  label,
		Action: action,
		Next:   next,
		Error:  errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render unlock page", "error", err)
	}
}

// renderStatusPage renders the auto-returning success or failure page
func (s *Server) renderStatusPage(w http.ResponseWriter, message, target string, success bool) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/status.html"))

	title := "Operation failed"
	if success {
		title = "Success"
	}

	data := statusData{
		Title:   title,
		Message: message,
		Target:  target,
		Success: success,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render status page", "error", err)
	}
}
