package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForEvent(t *testing.T) {
	assert.Equal(t, "active", statusForEvent("INITIAL_PURCHASE"))
	assert.Equal(t, "active", statusForEvent("RENEWAL"))
	assert.Equal(t, "active", statusForEvent("UNCANCELLATION"))
	assert.Equal(t, "cancelled", statusForEvent("CANCELLATION"))
	assert.Equal(t, "expired", statusForEvent("EXPIRATION"))
	assert.Equal(t, "billing_issue", statusForEvent("BILLING_ISSUE"))
	assert.Equal(t, "", statusForEvent("TEST"))
}
