package realms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realms.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": "twin", "name": "Truly Twin", "description": "AI companion", "icon": "💬", "premium": false},
		{"id": "lullaby", "name": "Lullaby Mode", "description": "Sleep rituals", "icon": "🌙", "premium": true}
	]`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())

	info, ok := reg.Get("twin")
	require.True(t, ok)
	assert.Equal(t, "Truly Twin", info.Name)
	assert.False(t, info.Premium)

	assert.True(t, reg.IsPremium("lullaby"))
	assert.False(t, reg.IsPremium("twin"))
	assert.False(t, reg.IsPremium("missing"))
}

func TestLoadRegistrySortedListing(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": "origin", "name": "Truly Origin"},
		{"id": "circles", "name": "Truly Circles"},
		{"id": "garden", "name": "Secret Garden"}
	]`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "circles", all[0].ID)
	assert.Equal(t, "garden", all[1].ID)
	assert.Equal(t, "origin", all[2].ID)
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": "twin", "name": "Truly Twin"},
		{"id": "twin", "name": "Duplicate"}
	]`)

	_, err := LoadRegistry(path)
	assert.ErrorContains(t, err, "duplicate realm id")
}

func TestLoadRegistryRejectsMissingID(t *testing.T) {
	path := writeCatalog(t, `[{"name": "Nameless"}]`)

	_, err := LoadRegistry(path)
	assert.ErrorContains(t, err, "missing id")
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
