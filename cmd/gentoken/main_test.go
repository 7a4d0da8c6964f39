package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gistree/server/storage/sqlite"
	"github.com/gistree/server/token"
	"github.com/gistree/server/token/jwt"
	"github.com/gistree/server/users"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gistree.db")
	db, err := sqlite.Open(t.Context(), path)
	require.NoError(t, err)
	defer db.Close()

	store := sqlite.NewUserStore(db)
	for _, u := range []users.NewUser{
		{ID: "u-1", Name: "First", Email: "first@gist.ac.kr", StudentID: "20190001"},
		{ID: "u-2", Name: "Second", Email: "second@gist.ac.kr", StudentID: "20190002"},
	} {
		_, err := store.FindOrCreate(t.Context(), u)
		require.NoError(t, err)
	}
	return path
}

func inspect(t *testing.T, raw string) *jwt.SessionClaims {
	t.Helper()
	signer, err := token.NewHMACSigner("tool-secret")
	require.NoError(t, err)
	claims, err := jwt.NewInspector(signer, nil).Inspect(strings.TrimSpace(raw))
	require.NoError(t, err)
	return claims
}

func TestRun(t *testing.T) {
	t.Setenv("JWT_SECRET", "tool-secret")
	path := seed(t)

	t.Run("first user by default", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(t.Context(), []string{"--db", path}, &out, &bytes.Buffer{}))
		require.Equal(t, "u-1", inspect(t, out.String()).Subject)
	})

	t.Run("by student id with ttl", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(t.Context(), []string{"--db", path, "--student-id", "20190002", "--ttl", "1h"}, &out, &bytes.Buffer{}))
		claims := inspect(t, out.String())
		require.Equal(t, "u-2", claims.Subject)
		require.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
	})

	t.Run("unknown student", func(t *testing.T) {
		err := run(t.Context(), []string{"--db", path, "--student-id", "0"}, &bytes.Buffer{}, &bytes.Buffer{})
		require.ErrorContains(t, err, "finding user")
	})

	t.Run("bad flags", func(t *testing.T) {
		require.Error(t, run(t.Context(), []string{"--ttl", "soon"}, &bytes.Buffer{}, &bytes.Buffer{}))
		require.Error(t, run(t.Context(), []string{"--db", path, "extra"}, &bytes.Buffer{}, &bytes.Buffer{}))
		require.Error(t, run(t.Context(), []string{"--db", path, "--ttl", "-1h"}, &bytes.Buffer{}, &bytes.Buffer{}))
	})
}
