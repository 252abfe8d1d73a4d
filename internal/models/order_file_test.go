package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkRejectedRequiresReason(t *testing.T) {
	f := OrderFile{Status: FileStatusPending}
	err := f.MarkRejected("   ", uuid.New(), time.Now())
	require.ErrorIs(t, err, ErrEmptyRejectionReason)

	// nothing changed on the failed transition
	assert.Equal(t, FileStatusPending, f.Status)
	assert.Nil(t, f.ReviewedBy)
	assert.Nil(t, f.ReviewedAt)
}

func TestMarkRejectedStampsReview(t *testing.T) {
	reviewer := uuid.New()
	now := time.Now()

	f := OrderFile{Status: FileStatusPending}
	require.NoError(t, f.MarkRejected("  blurry cover scan  ", reviewer, now))

	assert.Equal(t, FileStatusRejected, f.Status)
	assert.Equal(t, "blurry cover scan", f.RejectionReason)
	require.NotNil(t, f.ReviewedBy)
	assert.Equal(t, reviewer, *f.ReviewedBy)
	require.NotNil(t, f.ReviewedAt)
	assert.Equal(t, now, *f.ReviewedAt)
}

func TestMarkApprovedClearsRejectionReason(t *testing.T) {
	reviewer := uuid.New()
	f := OrderFile{Status: FileStatusRejected, RejectionReason: "wrong format"}

	f.MarkApproved(reviewer, time.Now())

	assert.Equal(t, FileStatusApproved, f.Status)
	assert.Empty(t, f.RejectionReason)
	require.NotNil(t, f.ReviewedBy)
	assert.Equal(t, reviewer, *f.ReviewedBy)
}

func TestReReviewLastWriteWins(t *testing.T) {
	f := OrderFile{Status: FileStatusPending}

	f.MarkApproved(uuid.New(), time.Now())
	require.NoError(t, f.MarkRejected("missing license page", uuid.New(), time.Now()))
	assert.Equal(t, FileStatusRejected, f.Status)

	f.MarkApproved(uuid.New(), time.Now())
	assert.Equal(t, FileStatusApproved, f.Status)
	assert.Empty(t, f.RejectionReason)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber()
		require.True(t, strings.HasPrefix(n, "TB-"))
		require.Len(t, n, 11)
		for _, r := range n[3:] {
			assert.Contains(t, orderNumberAlphabet, string(r))
		}
		seen[n] = true
	}
	// 32^8 combinations, collisions in 100 draws would be a broken generator
	assert.Greater(t, len(seen), 95)
}

func TestValidStatusHelpers(t *testing.T) {
	assert.True(t, ValidOrderStatus("pending"))
	assert.True(t, ValidOrderStatus("cancelled"))
	assert.False(t, ValidOrderStatus("shipped"))

	assert.True(t, ValidFileStatus("approved"))
	assert.False(t, ValidFileStatus("deleted"))

	assert.True(t, ValidFileType("cover"))
	assert.False(t, ValidFileType("invoice"))
}
