package config

import (
	"strings"
	"time"
)

const (
	idpClientIDVar      = "IDP_CLIENT_ID"
	idpClientSecretVar  = "IDP_CLIENT_SECRET"
	idpAuthorizeURLVar  = "IDP_AUTHORIZE_URL"
	idpTokenURLVar      = "IDP_TOKEN_URL"
	idpUserInfoURLVar   = "IDP_USERINFO_URL"
	idpIssuerVar        = "IDP_ISSUER"
	idpCallbackURLVar   = "IDP_CALLBACK_URL"
	idpScopesVar        = "IDP_SCOPES"
	idpHTTPTimeoutVar   = "IDP_HTTP_TIMEOUT"
	callbackModeVar     = "AUTH_CALLBACK_MODE"
	tokenInRedirectVar  = "AUTH_TOKEN_IN_REDIRECT"
	defaultAuthorizeURL = "https://idp.gistory.me/authorize"
	defaultTokenURL     = "https://api.idp.gistory.me/oauth2/token"
	defaultUserInfoURL  = "https://api.idp.gistory.me/oauth2/userinfo"
	defaultScopes       = "openid profile student_id email"
)

// CallbackMode selects how /auth/callback reports its outcome.
type CallbackMode string

const (
	CallbackModeRedirect CallbackMode = "redirect"
	CallbackModeJSON     CallbackMode = "json"
)

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetUserInfoURL() string
	GetIssuer() string
	GetCallbackURL() string
	GetScopes() []string
	GetIdPHTTPTimeout() time.Duration
	GetCodeVerifierTTL() time.Duration
	GetSessionTTL() time.Duration
	GetCallbackMode() CallbackMode
	GetTokenInRedirect() bool
}

type OAuth struct {
	ClientID        string
	ClientSecret    string
	AuthorizeURL    string
	TokenURL        string
	UserInfoURL     string
	Issuer          string // optional; when set, endpoints come from OIDC discovery
	CallbackURL     string
	Scopes          []string
	HTTPTimeout     time.Duration
	CallbackMode    CallbackMode
	TokenInRedirect bool
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetAuthorizeURL() string {
	return o.AuthorizeURL
}

func (o OAuth) GetTokenURL() string {
	return o.TokenURL
}

func (o OAuth) GetUserInfoURL() string {
	return o.UserInfoURL
}

func (o OAuth) GetIssuer() string {
	return o.Issuer
}

func (o OAuth) GetCallbackURL() string {
	return o.CallbackURL
}

func (o OAuth) GetScopes() []string {
	return o.Scopes
}

func (o OAuth) GetIdPHTTPTimeout() time.Duration {
	if o.HTTPTimeout <= 0 {
		return 10 * time.Second
	}
	return o.HTTPTimeout
}

// GetCodeVerifierTTL is how long a started login may take before the
// code_verifier cookie expires.
func (OAuth) GetCodeVerifierTTL() time.Duration {
	return 10 * time.Minute
}

func (OAuth) GetSessionTTL() time.Duration {
	return 24 * time.Hour
}

func (o OAuth) GetCallbackMode() CallbackMode {
	if o.CallbackMode == "" {
		return CallbackModeRedirect
	}
	return o.CallbackMode
}

func (o OAuth) GetTokenInRedirect() bool {
	return o.TokenInRedirect
}

func (l *loader) oauth(env EnvVars) OAuth {
	mode := CallbackMode(strings.ToLower(GetEnv(callbackModeVar, string(CallbackModeRedirect))))
	if mode != CallbackModeRedirect && mode != CallbackModeJSON {
		l.invalid = append(l.invalid, callbackModeVar+" must be \"redirect\" or \"json\"")
		mode = CallbackModeRedirect
	}

	return OAuth{
		ClientID:        l.required(idpClientIDVar),
		ClientSecret:    l.required(idpClientSecretVar),
		AuthorizeURL:    GetEnv(idpAuthorizeURLVar, defaultAuthorizeURL),
		TokenURL:        GetEnv(idpTokenURLVar, defaultTokenURL),
		UserInfoURL:     GetEnv(idpUserInfoURLVar, defaultUserInfoURL),
		Issuer:          GetEnv(idpIssuerVar, ""),
		CallbackURL:     GetEnv(idpCallbackURLVar, env.BackendURL+"/auth/callback"),
		Scopes:          splitList(GetEnv(idpScopesVar, defaultScopes)),
		HTTPTimeout:     l.duration(idpHTTPTimeoutVar, 10*time.Second),
		CallbackMode:    mode,
		TokenInRedirect: l.boolean(tokenInRedirectVar, false),
	}
}
