package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gistree/server/internal/config"
	apperrors "github.com/gistree/server/internal/errors"
	"golang.org/x/oauth2"
)

// CodeChallengeMethodPlain is the only PKCE method the institutional
// provider accepts.
const CodeChallengeMethodPlain = "plain"

// Provider is a Client backed by golang.org/x/oauth2 for the code flow and
// go-oidc for the userinfo lookup.
type Provider struct {
	config       *oauth2.Config
	oidcProvider *oidc.Provider
	httpClient   *http.Client
}

var _ Client = (*Provider)(nil)

// NewProvider builds the provider from configuration. When an issuer is
// configured the endpoints come from OIDC discovery, otherwise the
// configured authorize, token and userinfo URLs are used directly.
func NewProvider(ctx context.Context, cfg config.OAuthConfig) (*Provider, error) {
	httpClient := &http.Client{
		Timeout: cfg.GetIdPHTTPTimeout(),
		Transport: &rawBasicAuthTransport{
			clientID:     cfg.GetClientID(),
			clientSecret: cfg.GetClientSecret(),
			base:         http.DefaultTransport,
		},
	}
	ctx = oidc.ClientContext(ctx, httpClient)

	var op *oidc.Provider
	if issuer := cfg.GetIssuer(); issuer != "" {
		discovered, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to discover identity provider %q", issuer)
		}
		op = discovered
	} else {
		op = (&oidc.ProviderConfig{
			AuthURL:     cfg.GetAuthorizeURL(),
			TokenURL:    cfg.GetTokenURL(),
			UserInfoURL: cfg.GetUserInfoURL(),
		}).NewProvider(ctx)
	}

	endpoint := op.Endpoint()
	// The provider authenticates clients with HTTP Basic only. The header
	// credentials are rewritten unescaped by rawBasicAuthTransport.
	endpoint.AuthStyle = oauth2.AuthStyleInHeader

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetCallbackURL(),
			Scopes:       cfg.GetScopes(),
		},
		oidcProvider: op,
		httpClient:   httpClient,
	}, nil
}

// AuthCodeURL returns the provider's authorization URL for one login.
func (p *Provider) AuthCodeURL(req AuthRequest) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", req.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", CodeChallengeMethodPlain),
		oauth2.SetAuthURLParam("prompt", "consent"),
	}
	if req.Nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", req.Nonce))
	}
	return p.config.AuthCodeURL(req.State, opts...)
}

// Exchange redeems an authorization code together with its PKCE verifier.
// Any failure is reported as ErrUpstream.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	tok, err := p.config.Exchange(p.clientContext(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrUpstream)
	}
	return tok, nil
}

// userInfoClaims are the non-standard claims the provider returns.
type userInfoClaims struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	StudentID     string `json:"student_id"`
	StudentIDBare string `json:"studentId"`
}

// UserInfo resolves the access token into an Identity. A rejected token or
// an unreadable response is reported as ErrUnauthorized.
func (p *Provider) UserInfo(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	ui, err := p.oidcProvider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrUnauthorized)
	}

	var claims userInfoClaims
	if err := ui.Claims(&claims); err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrUnauthorized)
	}

	id := &Identity{
		UUID:      strings.TrimSpace(ui.Subject),
		Name:      strings.TrimSpace(claims.Name),
		Email:     strings.TrimSpace(ui.Email),
		StudentID: strings.TrimSpace(claims.StudentID),
	}
	if id.UUID == "" {
		id.UUID = strings.TrimSpace(claims.UUID)
	}
	if id.StudentID == "" {
		id.StudentID = strings.TrimSpace(claims.StudentIDBare)
	}
	return id, nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
