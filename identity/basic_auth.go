package identity

import "net/http"

// rawBasicAuthTransport replaces the Basic credentials golang.org/x/oauth2
// puts on the token request with the unescaped client id and secret. The
// institutional provider compares base64(clientID:clientSecret) byte for
// byte and does not form-decode the pair.
type rawBasicAuthTransport struct {
	clientID     string
	clientSecret string
	base         http.RoundTripper
}

func (t *rawBasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, _, ok := req.BasicAuth(); !ok {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.clientID, t.clientSecret)
	return t.base.RoundTrip(clone)
}
