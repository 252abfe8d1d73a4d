package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchLike(t *testing.T) {
	assert.Equal(t, "%tb-k9pm%", searchLike("TB-K9PM"))
	assert.Equal(t, "%tb-k9pm%", searchLike("  TB-K9PM  "))
	assert.Equal(t, "%کتاب نمونه%", searchLike("کتاب نمونه"))
}
