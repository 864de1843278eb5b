package circles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	assert.Len(t, catalog, 5)

	circle, ok := circleByID("gentle-hope")
	assert.True(t, ok)
	assert.Equal(t, "Gentle Hope", circle.Name)

	_, ok = circleByID("loud-despair")
	assert.False(t, ok)
}

func TestAnonymousNames(t *testing.T) {
	assert.Len(t, anonymousNames, 15)
	seen := make(map[string]bool, len(anonymousNames))
	for _, name := range anonymousNames {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
	}
}
