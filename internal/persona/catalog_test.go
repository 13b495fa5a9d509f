package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrderIsStable(t *testing.T) {
	catalog := NewCatalog(nil)
	personas := catalog.List()
	require.NotEmpty(t, personas)

	var names []string
	for _, p := range personas {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"android", "ios", "web", "web-authenticated"}, names)

	// Repeated listing yields the same order
	again := catalog.List()
	for i := range personas {
		assert.Equal(t, personas[i].Name, again[i].Name)
	}
}

func TestCatalogWithoutCredentials(t *testing.T) {
	catalog := NewCatalog(nil)
	for _, p := range catalog.List() {
		assert.Nil(t, p.Credentials, "persona %s should carry no credentials", p.Name)
	}
}

func TestCatalogAttachesCredentials(t *testing.T) {
	creds := &CredentialBundle{Path: "/tmp/cookies.txt"}
	catalog := NewCatalog(creds)

	credentialed := 0
	for _, p := range catalog.List() {
		if p.Credentials != nil {
			credentialed++
			assert.Equal(t, "/tmp/cookies.txt", p.Credentials.Path)
		}
	}
	assert.Equal(t, 1, credentialed)
}

func TestPersonasHaveIdentity(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range NewCatalog(nil).List() {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Client)
		assert.NotEmpty(t, p.UserAgent)
		assert.False(t, seen[p.Name], "duplicate persona name %s", p.Name)
		seen[p.Name] = true
	}
}

func TestLoadCredentialsMissingIsNotFatal(t *testing.T) {
	assert.Nil(t, LoadCredentials(""))
	assert.Nil(t, LoadCredentials("/nonexistent/cookies.txt"))
}
