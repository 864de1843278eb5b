package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriorityOrder(t *testing.T) {
	// "heal" also appears but the dreamer group is checked first.
	badge := Classify([3]string{"I dream of healing", "", ""})
	assert.Equal(t, "dreamer", badge.ID)

	// All five groups present: still dreamer.
	badge = Classify([3]string{"dream heal strong", "create art", "learn wisdom"})
	assert.Equal(t, "dreamer", badge.ID)

	// Without dreamer keywords, healer wins over warrior.
	badge = Classify([3]string{"I want peace", "I will fight for it", ""})
	assert.Equal(t, "healer", badge.ID)
}

func TestClassifyGuardianFallback(t *testing.T) {
	badge := Classify([3]string{"blue", "seven", "ok"})
	assert.Equal(t, "guardian", badge.ID)

	badge = Classify([3]string{"", "", ""})
	assert.Equal(t, "guardian", badge.ID)
}

func TestClassifyCaseAndSubstring(t *testing.T) {
	badge := Classify([3]string{"DREAMING big", "", ""})
	assert.Equal(t, "dreamer", badge.ID)

	// "artist" contains "art".
	badge = Classify([3]string{"I am an artist", "", ""})
	assert.Equal(t, "muse", badge.ID)
}

func TestClassifyHopefulAnswers(t *testing.T) {
	// "hopeful" contains "hope", so dreamer wins even though "brave"
	// and "strong" would match warrior.
	badge := Classify([3]string{"I feel hopeful and lost", "I want to be brave", "be strong"})
	assert.Equal(t, "dreamer", badge.ID)
}

func TestClassifyMatchesAcrossAnswers(t *testing.T) {
	// Keywords are matched against the joined corpus, whichever answer
	// they sit in.
	badge := Classify([3]string{"", "", "quiet calm evenings"})
	assert.Equal(t, "healer", badge.ID)
}

func TestBadgeCatalog(t *testing.T) {
	all := Badges()
	assert.Len(t, all, 6)
	assert.Equal(t, "dreamer", all[0].ID)
	assert.Equal(t, "guardian", all[5].ID)

	sage, ok := BadgeByID("sage")
	assert.True(t, ok)
	assert.Equal(t, "The Sage", sage.Name)

	_, ok = BadgeByID("wizard")
	assert.False(t, ok)
}
