package session

import (
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))

	require.NoError(t, err)
	require.False(t, s.IsSignedIn())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	original := &Session{
		BaseURL: "http://localhost:8080",
		Email:   "ana@example.com",
		Cookies: []Cookie{
			{Name: "access_token", Value: "a", Path: "/", HttpOnly: true},
			{Name: "refresh_token", Value: "r", Path: "/", Expires: expires},
		},
	}
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", loaded.Email)
	require.True(t, loaded.IsSignedIn())
	refresh, ok := loaded.Cookie("refresh_token")
	require.True(t, ok)
	require.True(t, expires.Equal(refresh.Expires))
	require.False(t, loaded.UpdatedAt.IsZero())

	loaded.Clear()
	require.False(t, loaded.IsSignedIn())
	require.Empty(t, loaded.Email)
}

func TestJarTracksFullCookies(t *testing.T) {
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	jar, err := NewJar()
	require.NoError(t, err)
	jar.now = func() time.Time { return fixed }

	u, _ := url.Parse("http://api.example.com/signin")
	jar.SetCookies(u, []*http.Cookie{
		{Name: "refresh_token", Value: "r1", Path: "/", MaxAge: 3600, HttpOnly: true},
		{Name: "access_token", Value: "a1", Path: "/"},
	})

	snapshot := jar.Snapshot()
	require.Len(t, snapshot, 2)
	require.Equal(t, "access_token", snapshot[0].Name)
	require.Equal(t, "refresh_token", snapshot[1].Name)
	require.Equal(t, fixed.Add(time.Hour), snapshot[1].Expires)
	require.True(t, snapshot[1].HttpOnly)

	jar.SetCookies(u, []*http.Cookie{{Name: "access_token", Value: "", Path: "/", MaxAge: -1}})
	snapshot = jar.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, "refresh_token", snapshot[0].Name)
}

func TestJarRestoreSkipsExpired(t *testing.T) {
	jar, err := NewJar()
	require.NoError(t, err)

	u, _ := url.Parse("http://127.0.0.1:8080")
	jar.Restore(u, []Cookie{
		{Name: "access_token", Value: "old", Path: "/", Expires: time.Now().Add(-time.Minute)},
		{Name: "refresh_token", Value: "r", Path: "/"},
	})

	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	require.Equal(t, "refresh_token", cookies[0].Name)
	require.Len(t, jar.Snapshot(), 1)
}

func TestJarKeepsSameNameOnDifferentPaths(t *testing.T) {
	jar, err := NewJar()
	require.NoError(t, err)

	u, _ := url.Parse("http://api.example.com/api/refresh")
	jar.SetCookies(u, []*http.Cookie{
		{Name: "refresh_token", Value: "root", Path: "/"},
		{Name: "refresh_token", Value: "scoped", Path: "/api"},
		{Name: "device", Value: "d1"},
	})

	snapshot := jar.Snapshot()
	require.Len(t, snapshot, 3)
	require.Equal(t, Cookie{Name: "device", Value: "d1", Path: "/api"}, snapshot[0])
	require.Equal(t, "/", snapshot[1].Path)
	require.Equal(t, "root", snapshot[1].Value)
	require.Equal(t, "/api", snapshot[2].Path)
	require.Equal(t, "scoped", snapshot[2].Value)

	restored, err := NewJar()
	require.NoError(t, err)
	base, _ := url.Parse("http://api.example.com")
	restored.Restore(base, snapshot)
	require.Equal(t, snapshot, restored.Snapshot())

	apiURL, _ := url.Parse("http://api.example.com/api/update_phone")
	require.Len(t, restored.Cookies(apiURL), 3)
	rootURL, _ := url.Parse("http://api.example.com/signin")
	require.Len(t, restored.Cookies(rootURL), 1)

	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Path: "/api", MaxAge: -1}})
	snapshot = jar.Snapshot()
	require.Len(t, snapshot, 2)
	require.Equal(t, "root", snapshot[1].Value)
}
