package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "09123456789", NormalizeDigits("۰۹۱۲۳۴۵۶۷۸۹"))
	assert.Equal(t, "09123456789", NormalizeDigits("٠٩١٢٣٤٥٦٧٨٩"))
	assert.Equal(t, "09123456789", NormalizeDigits("09123456789"))
	assert.Equal(t, "mix0912", NormalizeDigits("mix09۱٢"))
}
