package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckContent(t *testing.T) {
	s := &ModerationService{}

	assert.NoError(t, s.CheckContent("tonight felt a little lighter"))
	assert.NoError(t, s.CheckContent("her skillful hands, resting at last"))

	assert.ErrorIs(t, s.CheckContent("just KYS already"), ErrBlockedContent)
	assert.ErrorIs(t, s.CheckContent("kys."), ErrBlockedContent)
	assert.ErrorIs(t, s.CheckContent("go kill yourself, nobody cares"), ErrBlockedContent)
}
