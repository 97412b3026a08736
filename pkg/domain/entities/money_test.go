package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥0", FormatYen(decimal.Zero))
	assert.Equal(t, "¥350", FormatYen(decimal.NewFromInt(350)))
	assert.Equal(t, "¥1,234,567", FormatYen(decimal.NewFromInt(1234567)))
	assert.Equal(t, "¥13", FormatYen(decimal.RequireFromString("12.5")))
}
