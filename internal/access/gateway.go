// ABOUTME: Per-request access decisions for the view and edit protection tiers
// ABOUTME: Compares bearer secrets against cookie sessions and query bootstrap tokens

package access

import (
	"crypto/subtle"
	"log/slog"
	"net/url"
	"time"
)

// Paths the gateway makes decisions for. Everything else is NotFound.
const (
	RootPath = "/"
	EditPath = "/edit"
	SavePath = "/save"
)

// TokenField is the form field carrying a raw secret on POST submissions
const TokenField = "access_token"

// Tier describes one protection scope: its session cookie and the query
// parameter used for one-time bootstrap tokens.
type Tier struct {
	Name       string
	CookieName string
	TokenParam string
}

var (
	TierView = Tier{Name: "view", CookieName: "view_session", TokenParam: "view_token"}
	TierEdit = Tier{Name: "edit", CookieName: "edit_session", TokenParam: "edit_token"}
)

// Credentials holds the two optional shared secrets. An empty secret means
// that tier's protection is disabled entirely: the tier never challenges.
// A set secret with no valid proof always challenges. The two states are
// deliberately kept distinct.
type Credentials struct {
	ViewSecret string
	EditSecret string
}

// ViewEnabled reports whether the view tier requires a credential
func (c Credentials) ViewEnabled() bool { return c.ViewSecret != "" }

// EditEnabled reports whether the edit tier requires a credential
func (c Credentials) EditEnabled() bool { return c.EditSecret != "" }

func (c Credentials) secretFor(tier Tier) string {
	if tier.Name == TierEdit.Name {
		return c.EditSecret
	}
	return c.ViewSecret
}

// Decision is the gateway's verdict for a request
type Decision int

const (
	// GrantView allows rendering the link list
	GrantView Decision = iota
	// GrantEdit allows rendering the editor or applying a save
	GrantEdit
	// ChallengeView asks the caller for the view secret
	ChallengeView
	// ChallengeEdit asks the caller for the edit secret
	ChallengeEdit
	// Bootstrap mints a session cookie and redirects to a token-free URL
	Bootstrap
	// Deny rejects the request outright (403, no page)
	Deny
	// NotFound means the path is not part of the gated surface
	NotFound
)

// SessionCookie describes a cookie the caller should mint on the response
type SessionCookie struct {
	Tier   Tier
	Token  string
	MaxAge int // seconds
}

// Request is the slice of an HTTP request the gateway looks at. It is kept
// independent of net/http so decisions stay pure and side-effect-free.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	CookieHeader string
	FormToken    string // value of the access_token form field, POSTs only
}

// Result is a decision plus the actions the HTTP layer must carry out
type Result struct {
	Decision   Decision
	RedirectTo string         // non-empty: respond 303 to this URL
	Cookie     *SessionCookie // non-nil: append this Set-Cookie
	Message    string         // inline error for re-rendered challenges
}

// Gateway evaluates requests against the configured credentials. It holds
// no per-request state; every call is independent.
type Gateway struct {
	creds   Credentials
	viewTTL time.Duration
	editTTL time.Duration
	logger  *slog.Logger
}

// New creates a gateway with per-tier session lifetimes
func New(creds Credentials, viewTTL, editTTL time.Duration) *Gateway {
	return &Gateway{
		creds:   creds,
		viewTTL: viewTTL,
		editTTL: editTTL,
		logger:  slog.Default().With("component", "access"),
	}
}

// Credentials returns the configured credentials
func (g *Gateway) Credentials() Credentials { return g.creds }

// Evaluate runs the transition rules in fixed precedence order and returns
// the verdict. The single invariant that must hold everywhere: content is
// never granted while a raw secret sits in the request URL. A correct
// query token always produces a mint-then-redirect to the token-free URL.
func (g *Gateway) Evaluate(req Request) Result {
	switch {
	case req.Method == "POST" && req.Path == EditPath:
		return g.evaluateEditSubmit(req)
	case req.Method == "POST" && req.Path == RootPath:
		return g.evaluateViewSubmit(req)
	case req.Method == "POST" && req.Path == SavePath:
		return g.evaluateSave(req)
	case req.Method == "GET" && req.Path == EditPath:
		return g.evaluateLanding(req, TierEdit, GrantEdit, ChallengeEdit)
	case req.Method == "GET" && req.Path == RootPath:
		return g.evaluateLanding(req, TierView, GrantView, ChallengeView)
	default:
		return Result{Decision: NotFound}
	}
}

// evaluateEditSubmit handles the edit-tier credential form. Success mints
// the session cookie and redirects to the editor; failure re-renders the
// challenge with an inline error and sets nothing.
func (g *Gateway) evaluateEditSubmit(req Request) Result {
	if !g.creds.EditEnabled() {
		// No secret configured: the tier is open, nothing to verify
		return Result{Decision: GrantEdit, RedirectTo: EditPath}
	}

	if secretEqual(req.FormToken, g.creds.EditSecret) {
		g.logger.Info("edit credential accepted")
		return Result{
			Decision:   GrantEdit,
			RedirectTo: EditPath,
			Cookie:     g.mint(TierEdit),
		}
	}

	g.logger.Info("edit credential rejected")
	return Result{Decision: ChallengeEdit, Message: "Incorrect access token, please try again."}
}

// evaluateViewSubmit handles the view-tier credential form, mirroring the
// edit-tier flow. Success mints the session cookie and redirects to the
// list page; failure re-renders the challenge with an inline error and
// sets nothing.
func (g *Gateway) evaluateViewSubmit(req Request) Result {
	if !g.creds.ViewEnabled() {
		return Result{Decision: GrantView, RedirectTo: RootPath}
	}

	if secretEqual(req.FormToken, g.creds.ViewSecret) {
		g.logger.Info("view credential accepted")
		return Result{
			Decision:   GrantView,
			RedirectTo: RootPath,
			Cookie:     g.mint(TierView),
		}
	}

	g.logger.Info("view credential rejected")
	return Result{Decision: ChallengeView, Message: "Incorrect access token, please try again."}
}

// evaluateSave authorizes a list replacement. Either a live edit session
// cookie or a raw token in the form body suffices; some deployments never
// set the cookie. On success the view-tier cookie is refreshed
// opportunistically so the redirect back to the list page does not bounce
// into a view challenge.
func (g *Gateway) evaluateSave(req Request) Result {
	if !g.AuthorizeEdit(req.CookieHeader, req.FormToken) {
		return Result{Decision: Deny}
	}

	res := Result{Decision: GrantEdit, RedirectTo: RootPath}
	if g.creds.ViewEnabled() && !g.hasSession(req.CookieHeader, TierView) {
		res.Cookie = g.mint(TierView)
	}
	return res
}

// evaluateLanding handles the GET entry point for a tier: grant on an open
// tier or a valid session, mint-and-redirect on a valid bootstrap token,
// challenge otherwise.
func (g *Gateway) evaluateLanding(req Request, tier Tier, grant, challenge Decision) Result {
	secret := g.creds.secretFor(tier)
	if secret == "" {
		return Result{Decision: grant}
	}

	if g.hasSession(req.CookieHeader, tier) {
		return Result{Decision: grant}
	}

	if token := req.Query.Get(tier.TokenParam); token != "" {
		if secretEqual(token, secret) {
			g.logger.Info("bootstrap token accepted", "tier", tier.Name)
			return Result{
				Decision:   Bootstrap,
				RedirectTo: stripParam(req.Path, req.Query, tier.TokenParam),
				Cookie:     g.mint(tier),
			}
		}
		g.logger.Info("bootstrap token rejected", "tier", tier.Name)
		return Result{Decision: challenge, Message: "Incorrect access token, please try again."}
	}

	return Result{Decision: challenge}
}

// AuthorizeEdit is the dual-channel authorization combinator: a request may
// prove edit capability through its session cookie or through a raw token,
// and either proof alone suffices.
func (g *Gateway) AuthorizeEdit(cookieHeader, formToken string) bool {
	if !g.creds.EditEnabled() {
		return true
	}
	return g.hasSession(cookieHeader, TierEdit) || secretEqual(formToken, g.creds.EditSecret)
}

// hasSession reports whether the request carries a session cookie whose
// value equals the tier's secret.
func (g *Gateway) hasSession(cookieHeader string, tier Tier) bool {
	secret := g.creds.secretFor(tier)
	if secret == "" {
		return false
	}
	return secretEqual(ReadSession(cookieHeader, tier), secret)
}

// mint builds the session cookie for a tier. The cookie value is the
// secret itself: possession is the capability, there is no server-side
// session table and therefore no revocation short of rotating the secret.
func (g *Gateway) mint(tier Tier) *SessionCookie {
	ttl := g.viewTTL
	if tier.Name == TierEdit.Name {
		ttl = g.editTTL
	}
	return &SessionCookie{
		Tier:   tier,
		Token:  g.creds.secretFor(tier),
		MaxAge: int(ttl.Seconds()),
	}
}

// secretEqual compares a supplied token against a secret in constant time.
// Empty tokens never match.
func secretEqual(token, secret string) bool {
	if token == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// stripParam rebuilds a relative URL with one query parameter removed,
// preserving everything else. Used to bounce bootstrap tokens out of the
// address bar before any content renders.
func stripParam(path string, query url.Values, param string) string {
	rest := url.Values{}
	for k, vs := range query {
		if k == param {
			continue
		}
		rest[k] = vs
	}
	if len(rest) == 0 {
		return path
	}
	return path + "?" + rest.Encode()
}
