package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/gistree/server/auth"
	"github.com/stretchr/testify/require"
)

const frontend = "https://gistree.example.com"

func TestSafeRedirectPath(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"relative path", "/tree/123", "/tree/123"},
		{"relative with query and fragment", "/messages?page=2#top", "/messages?page=2#top"},
		{"percent encoded path", "%2Ftree%2F123", "/tree/123"},
		{"same origin absolute", "https://gistree.example.com/tree/9?x=1#y", "/tree/9?x=1#y"},
		{"same origin explicit port", "https://gistree.example.com:443/mailbox", "/mailbox"},
		{"same origin encoded", "https%3A%2F%2Fgistree.example.com%2Fmailbox", "/mailbox"},
		{"same origin bare host", "https://gistree.example.com", "/"},
		{"bare relative word", "garden", "/garden"},
		{"other origin", "https://evil.example.com/steal", "/"},
		{"other scheme", "http://gistree.example.com/tree", "/"},
		{"other port", "https://gistree.example.com:8443/tree", "/"},
		{"protocol relative", "//evil.example.com/steal", "/"},
		{"encoded protocol relative", "%2F%2Fevil.example.com", "/"},
		{"backslash trick", `/\evil.example.com`, "/"},
		{"javascript scheme", "javascript:alert(1)", "/"},
		{"header injection", "/ok%0d%0aSet-Cookie:x=1", "/"},
		{"bad escape", "/%zz", "/"},
		{"truncated escape", "/tree/%E0%A4%A", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, auth.SafeRedirectPath(tc.raw, frontend))
		})
	}
}

func TestState_RoundTrip(t *testing.T) {
	for _, path := range []string{"/", "/tree/abc", "/messages?x=1&y=2#z", "/한글/경로"} {
		state := auth.EncodeState(path)
		decoded, err := base64.StdEncoding.DecodeString(state)
		require.NoError(t, err)
		require.Equal(t, path, string(decoded))
		require.Equal(t, path, auth.DecodeState(state, frontend))
	}
}

func TestDecodeState_RevalidatesPath(t *testing.T) {
	t.Run("cross origin state", func(t *testing.T) {
		state := base64.StdEncoding.EncodeToString([]byte("https://evil.example.com/"))
		require.Equal(t, "/", auth.DecodeState(state, frontend))
	})
	t.Run("protocol relative state", func(t *testing.T) {
		state := base64.StdEncoding.EncodeToString([]byte("//evil.example.com"))
		require.Equal(t, "/", auth.DecodeState(state, frontend))
	})
	t.Run("not base64", func(t *testing.T) {
		require.Equal(t, "/", auth.DecodeState("%%%not-base64%%%", frontend))
	})
	t.Run("missing", func(t *testing.T) {
		require.Equal(t, "/", auth.DecodeState("", frontend))
	})
	t.Run("plus turned into space", func(t *testing.T) {
		path := "/?>>?"
		state := auth.EncodeState(path)
		require.Contains(t, state, "+")
		require.Equal(t, path, auth.DecodeState(strings.ReplaceAll(state, "+", " "), frontend))
	})
}
