// ABOUTME: Tests for the access gateway state machine
// ABOUTME: Covers tier disabling, challenges, bootstrap tokens, and save authorization

package access

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	viewSecret = "view-secret"
	editSecret = "edit-secret"
)

func newGateway(viewSecret, editSecret string) *Gateway {
	return New(
		Credentials{ViewSecret: viewSecret, EditSecret: editSecret},
		1*time.Hour,
		168*time.Hour,
	)
}

func getRequest(path, rawQuery, cookieHeader string) Request {
	q, _ := url.ParseQuery(rawQuery)
	return Request{Method: "GET", Path: path, Query: q, CookieHeader: cookieHeader}
}

// ----------------------------------------------------------------------------
// Root path (view tier)
// ----------------------------------------------------------------------------

func TestEvaluate_RootViewDisabled_AlwaysGrants(t *testing.T) {
	gw := newGateway("", editSecret)

	// No cookie, garbage cookie, stray token: all grant, never challenge
	for _, cookie := range []string{"", "view_session=wrong", "view_session=" + editSecret} {
		res := gw.Evaluate(getRequest(RootPath, "view_token=anything", cookie))
		assert.Equal(t, GrantView, res.Decision)
		assert.Nil(t, res.Cookie)
	}
}

func TestEvaluate_RootViewEnabled_NoProof_Challenges(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "", ""))
	assert.Equal(t, ChallengeView, res.Decision)
	assert.Nil(t, res.Cookie)
	assert.Empty(t, res.RedirectTo)
}

func TestEvaluate_RootViewEnabled_ValidCookie_Grants(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "", "view_session="+viewSecret))
	assert.Equal(t, GrantView, res.Decision)
	assert.Nil(t, res.Cookie)
}

func TestEvaluate_RootViewEnabled_WrongCookie_Challenges(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "", "view_session=nope"))
	assert.Equal(t, ChallengeView, res.Decision)
}

func TestEvaluate_RootBootstrapToken_MintsAndRedirects(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "view_token="+viewSecret, ""))
	assert.Equal(t, Bootstrap, res.Decision)
	assert.Equal(t, RootPath, res.RedirectTo, "redirect target must not carry the token")
	require.NotNil(t, res.Cookie)
	assert.Equal(t, TierView.CookieName, res.Cookie.Tier.CookieName)
	assert.Equal(t, viewSecret, res.Cookie.Token)
	assert.Equal(t, 3600, res.Cookie.MaxAge)
}

func TestEvaluate_RootBootstrapToken_Idempotent(t *testing.T) {
	gw := newGateway(viewSecret, "")
	req := getRequest(RootPath, "view_token="+viewSecret, "")

	first := gw.Evaluate(req)
	second := gw.Evaluate(req)
	assert.Equal(t, first, second)
}

func TestEvaluate_RootBootstrapToken_Wrong_NoCookie(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "view_token=wrong", ""))
	assert.Equal(t, ChallengeView, res.Decision)
	assert.Nil(t, res.Cookie, "failed bootstrap must not set a cookie")
	assert.NotEmpty(t, res.Message)
}

func TestEvaluate_RootBootstrap_PreservesOtherParams(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(RootPath, "status=hello&view_token="+viewSecret, ""))
	assert.Equal(t, Bootstrap, res.Decision)
	assert.Equal(t, "/?status=hello", res.RedirectTo)
}

// ----------------------------------------------------------------------------
// Edit landing (edit tier)
// ----------------------------------------------------------------------------

func TestEvaluate_EditDisabled_AlwaysGrants(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(getRequest(EditPath, "", ""))
	assert.Equal(t, GrantEdit, res.Decision)
}

func TestEvaluate_EditEnabled_NoProof_Challenges(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(getRequest(EditPath, "", ""))
	assert.Equal(t, ChallengeEdit, res.Decision)
}

func TestEvaluate_EditCookie_Grants(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(getRequest(EditPath, "", "edit_session="+editSecret))
	assert.Equal(t, GrantEdit, res.Decision)
}

func TestEvaluate_EditBootstrapToken_MintsAndRedirects(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(getRequest(EditPath, "edit_token="+editSecret, ""))
	assert.Equal(t, Bootstrap, res.Decision)
	assert.Equal(t, EditPath, res.RedirectTo)
	require.NotNil(t, res.Cookie)
	assert.Equal(t, editSecret, res.Cookie.Token)
	assert.Equal(t, 168*3600, res.Cookie.MaxAge)
}

func TestEvaluate_ViewCookieDoesNotOpenEditTier(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	res := gw.Evaluate(getRequest(EditPath, "", "view_session="+viewSecret))
	assert.Equal(t, ChallengeEdit, res.Decision)
}

// ----------------------------------------------------------------------------
// Edit credential submission
// ----------------------------------------------------------------------------

func TestEvaluate_EditSubmit_CorrectToken(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: EditPath, FormToken: editSecret})
	assert.Equal(t, GrantEdit, res.Decision)
	assert.Equal(t, EditPath, res.RedirectTo)
	require.NotNil(t, res.Cookie)
	assert.Equal(t, editSecret, res.Cookie.Token)
}

func TestEvaluate_EditSubmit_WrongToken(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: EditPath, FormToken: "wrong"})
	assert.Equal(t, ChallengeEdit, res.Decision)
	assert.Nil(t, res.Cookie)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, res.RedirectTo)
}

func TestEvaluate_EditSubmit_TierDisabled_Redirects(t *testing.T) {
	gw := newGateway("", "")

	res := gw.Evaluate(Request{Method: "POST", Path: EditPath})
	assert.Equal(t, GrantEdit, res.Decision)
	assert.Equal(t, EditPath, res.RedirectTo)
	assert.Nil(t, res.Cookie)
}

// ----------------------------------------------------------------------------
// View credential submission
// ----------------------------------------------------------------------------

func TestEvaluate_ViewSubmit_CorrectToken(t *testing.T) {
	// Distinct secrets per tier: the view secret alone must open the view tier
	gw := newGateway(viewSecret, editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: RootPath, FormToken: viewSecret})
	assert.Equal(t, GrantView, res.Decision)
	assert.Equal(t, RootPath, res.RedirectTo)
	require.NotNil(t, res.Cookie)
	assert.Equal(t, TierView.CookieName, res.Cookie.Tier.CookieName)
	assert.Equal(t, viewSecret, res.Cookie.Token)
	assert.Equal(t, 3600, res.Cookie.MaxAge)
}

func TestEvaluate_ViewSubmit_EditSecretDoesNotMatch(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: RootPath, FormToken: editSecret})
	assert.Equal(t, ChallengeView, res.Decision)
	assert.Nil(t, res.Cookie)
}

func TestEvaluate_ViewSubmit_WrongToken(t *testing.T) {
	gw := newGateway(viewSecret, "")

	res := gw.Evaluate(Request{Method: "POST", Path: RootPath, FormToken: "wrong"})
	assert.Equal(t, ChallengeView, res.Decision)
	assert.Nil(t, res.Cookie)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, res.RedirectTo)
}

func TestEvaluate_ViewSubmit_TierDisabled_Redirects(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: RootPath})
	assert.Equal(t, GrantView, res.Decision)
	assert.Equal(t, RootPath, res.RedirectTo)
	assert.Nil(t, res.Cookie)
}

// ----------------------------------------------------------------------------
// Save authorization (dual channel)
// ----------------------------------------------------------------------------

func TestEvaluate_Save_ValidCookieNoToken(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: SavePath, CookieHeader: "edit_session=" + editSecret})
	assert.Equal(t, GrantEdit, res.Decision)
	assert.Equal(t, RootPath, res.RedirectTo)
}

func TestEvaluate_Save_InvalidCookieNoToken_Denied(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: SavePath, CookieHeader: "edit_session=wrong"})
	assert.Equal(t, Deny, res.Decision)
}

func TestEvaluate_Save_NoCookieValidToken(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: SavePath, FormToken: editSecret})
	assert.Equal(t, GrantEdit, res.Decision)
}

func TestEvaluate_Save_NoProof_Denied(t *testing.T) {
	gw := newGateway("", editSecret)

	res := gw.Evaluate(Request{Method: "POST", Path: SavePath})
	assert.Equal(t, Deny, res.Decision)
}

func TestEvaluate_Save_OpportunisticViewCookie(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	// No view session yet: the grant carries a fresh view cookie so the
	// redirect to the list page does not bounce into a challenge
	res := gw.Evaluate(Request{Method: "POST", Path: SavePath, CookieHeader: "edit_session=" + editSecret})
	assert.Equal(t, GrantEdit, res.Decision)
	require.NotNil(t, res.Cookie)
	assert.Equal(t, TierView.CookieName, res.Cookie.Tier.CookieName)
	assert.Equal(t, viewSecret, res.Cookie.Token)
}

func TestEvaluate_Save_ViewAlreadySatisfied_NoExtraCookie(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	cookies := "edit_session=" + editSecret + "; view_session=" + viewSecret
	res := gw.Evaluate(Request{Method: "POST", Path: SavePath, CookieHeader: cookies})
	assert.Equal(t, GrantEdit, res.Decision)
	assert.Nil(t, res.Cookie)
}

func TestAuthorizeEdit_Combinator(t *testing.T) {
	gw := newGateway("", editSecret)

	tests := []struct {
		name      string
		cookie    string
		formToken string
		want      bool
	}{
		{"cookie only", "edit_session=" + editSecret, "", true},
		{"token only", "", editSecret, true},
		{"both", "edit_session=" + editSecret, editSecret, true},
		{"wrong cookie, valid token", "edit_session=bad", editSecret, true},
		{"valid cookie, wrong token", "edit_session=" + editSecret, "bad", true},
		{"neither", "", "", false},
		{"both wrong", "edit_session=bad", "bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gw.AuthorizeEdit(tt.cookie, tt.formToken))
		})
	}
}

func TestAuthorizeEdit_TierDisabled(t *testing.T) {
	gw := newGateway("", "")
	assert.True(t, gw.AuthorizeEdit("", ""))
}

// ----------------------------------------------------------------------------
// Misc
// ----------------------------------------------------------------------------

func TestEvaluate_UnknownPath_NotFound(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	res := gw.Evaluate(getRequest("/nope", "", ""))
	assert.Equal(t, NotFound, res.Decision)
}

func TestEvaluate_WrongMethod_NotFound(t *testing.T) {
	gw := newGateway(viewSecret, editSecret)

	res := gw.Evaluate(Request{Method: "GET", Path: SavePath})
	assert.Equal(t, NotFound, res.Decision)

	res = gw.Evaluate(Request{Method: "DELETE", Path: RootPath})
	assert.Equal(t, NotFound, res.Decision)
}

func TestSecretEqual(t *testing.T) {
	assert.True(t, secretEqual("abc", "abc"))
	assert.False(t, secretEqual("abc", "abd"))
	assert.False(t, secretEqual("", ""), "empty never matches")
	assert.False(t, secretEqual("", "secret"))
	assert.False(t, secretEqual("secret", ""))
}
