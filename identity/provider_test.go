package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gistree/server/identity"
	"github.com/gistree/server/internal/config"
	apperrors "github.com/gistree/server/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeIdP struct {
	*httptest.Server
	tokenStatus    int
	userInfo       map[string]any
	userInfoStatus int
	lastTokenForm  url.Values
	lastBasicUser  string
	lastBasicPass  string
	lastBearer     string
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	f := &fakeIdP{
		tokenStatus:    http.StatusOK,
		userInfoStatus: http.StatusOK,
		userInfo: map[string]any{
			"sub":        "5d1f7a2e-0000-4000-8000-000000000001",
			"name":       "Park Gist",
			"email":      "park@gist.ac.kr",
			"student_id": "20220001",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.lastTokenForm = r.PostForm
		f.lastBasicUser, f.lastBasicPass, _ = r.BasicAuth()
		if f.tokenStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "idp-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /oauth2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.lastBearer = r.Header.Get("Authorization")
		if f.userInfoStatus != http.StatusOK {
			w.WriteHeader(f.userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newProvider(t *testing.T, f *fakeIdP) *identity.Provider {
	t.Helper()
	return newProviderWithClient(t, f, "gistree", "s3cret")
}

func newProviderWithClient(t *testing.T, f *fakeIdP, clientID, clientSecret string) *identity.Provider {
	t.Helper()
	p, err := identity.NewProvider(context.Background(), config.OAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthorizeURL: f.URL + "/authorize",
		TokenURL:     f.URL + "/oauth2/token",
		UserInfoURL:  f.URL + "/oauth2/userinfo",
		CallbackURL:  "https://api.example.com/auth/callback",
		Scopes:       []string{"openid", "profile", "student_id", "email"},
		HTTPTimeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return p
}

func TestProvider_AuthCodeURL(t *testing.T) {
	f := newFakeIdP(t)
	p := newProvider(t, f)

	raw := p.AuthCodeURL(identity.AuthRequest{State: "L2dhcmRlbg==", CodeChallenge: "abc123", Nonce: "n0nce"})
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, f.URL+"/authorize", u.Scheme+"://"+u.Host+u.Path)

	q := u.Query()
	require.Equal(t, "gistree", q.Get("client_id"))
	require.Equal(t, "https://api.example.com/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "openid profile student_id email", q.Get("scope"))
	require.Equal(t, "abc123", q.Get("code_challenge"))
	require.Equal(t, "plain", q.Get("code_challenge_method"))
	require.Equal(t, "L2dhcmRlbg==", q.Get("state"))
	require.Equal(t, "n0nce", q.Get("nonce"))
	require.Equal(t, "consent", q.Get("prompt"))
}

func TestProvider_ExchangeAndUserInfo(t *testing.T) {
	f := newFakeIdP(t)
	p := newProvider(t, f)
	ctx := context.Background()

	tok, err := p.Exchange(ctx, "the-code", "the-verifier")
	require.NoError(t, err)
	require.Equal(t, "idp-access-token", tok.AccessToken)

	require.Equal(t, "the-code", f.lastTokenForm.Get("code"))
	require.Equal(t, "authorization_code", f.lastTokenForm.Get("grant_type"))
	require.Equal(t, "the-verifier", f.lastTokenForm.Get("code_verifier"))
	require.Equal(t, "https://api.example.com/auth/callback", f.lastTokenForm.Get("redirect_uri"))
	require.Empty(t, f.lastTokenForm.Get("client_secret"))
	require.Equal(t, "gistree", f.lastBasicUser)
	require.Equal(t, "s3cret", f.lastBasicPass)

	id, err := p.UserInfo(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "Bearer idp-access-token", f.lastBearer)
	require.Equal(t, &identity.Identity{
		UUID:      "5d1f7a2e-0000-4000-8000-000000000001",
		Name:      "Park Gist",
		Email:     "park@gist.ac.kr",
		StudentID: "20220001",
	}, id)
}

func TestProvider_ExchangeSendsRawBasicCredentials(t *testing.T) {
	f := newFakeIdP(t)
	p := newProviderWithClient(t, f, "gist tree+app", "ab+c/d==")

	_, err := p.Exchange(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	require.Equal(t, "gist tree+app", f.lastBasicUser)
	require.Equal(t, "ab+c/d==", f.lastBasicPass)
}

func TestProvider_UserInfoAlternateClaimNames(t *testing.T) {
	f := newFakeIdP(t)
	f.userInfo = map[string]any{
		"uuid":      "uuid-from-claim",
		"name":      "Choi",
		"email":     "choi@gist.ac.kr",
		"studentId": "20210002",
	}
	p := newProvider(t, f)

	id, err := p.UserInfo(context.Background(), &oauth2.Token{AccessToken: "t", TokenType: "Bearer"})
	require.NoError(t, err)
	require.Equal(t, "uuid-from-claim", id.UUID)
	require.Equal(t, "20210002", id.StudentID)
}

func TestProvider_Failures(t *testing.T) {
	t.Run("token endpoint rejects code", func(t *testing.T) {
		f := newFakeIdP(t)
		f.tokenStatus = http.StatusBadRequest
		_, err := newProvider(t, f).Exchange(context.Background(), "bad", "v")
		require.ErrorIs(t, err, apperrors.ErrUpstream)
	})

	t.Run("userinfo rejects token", func(t *testing.T) {
		f := newFakeIdP(t)
		f.userInfoStatus = http.StatusUnauthorized
		_, err := newProvider(t, f).UserInfo(context.Background(), &oauth2.Token{AccessToken: "t"})
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("provider unreachable", func(t *testing.T) {
		f := newFakeIdP(t)
		p := newProvider(t, f)
		f.Close()
		_, err := p.Exchange(context.Background(), "code", "v")
		require.ErrorIs(t, err, apperrors.ErrUpstream)
	})
}
