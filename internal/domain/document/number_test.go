package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestType_Prefix(t *testing.T) {
	assert.Equal(t, "Q", TypeQuotation.Prefix())
	assert.Equal(t, "WO", TypeWorkOrder.Prefix())
	assert.Equal(t, "INV", TypeInvoice.Prefix())
	assert.Equal(t, "", Type("unknown").Prefix())
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeQuotation.IsValid())
	assert.True(t, TypeWorkOrder.IsValid())
	assert.True(t, TypeInvoice.IsValid())
	assert.False(t, Type("receipt").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		docType Type
		year    int
		seq     int
		want    string
	}{
		{TypeQuotation, 2025, 1, "Q-2025-0001"},
		{TypeWorkOrder, 2025, 42, "WO-2025-0042"},
		{TypeInvoice, 2026, 999, "INV-2026-0999"},
		{TypeInvoice, 2025, 1234, "INV-2025-1234"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			number := FormatNumber(tt.docType, tt.year, tt.seq)
			assert.Equal(t, tt.want, number)
			assert.True(t, NumberPattern.MatchString(number))
		})
	}
}

func TestNumberPattern(t *testing.T) {
	valid := []string{"Q-2025-0001", "WO-2025-0007", "INV-2024-9999"}
	for _, number := range valid {
		assert.True(t, NumberPattern.MatchString(number), number)
	}

	invalid := []string{
		"Q-25-0001",
		"q-2025-0001",
		"XX-2025-0001",
		"Q-2025-001",
		"Q-2025-00011",
		"Q-2025-0001 ",
		"INV2025-0001",
		"",
	}
	for _, number := range invalid {
		assert.False(t, NumberPattern.MatchString(number), number)
	}
}

func TestNumberPrefix(t *testing.T) {
	assert.Equal(t, "Q-2025-", NumberPrefix(TypeQuotation, 2025))
	assert.Equal(t, "WO-2026-", NumberPrefix(TypeWorkOrder, 2026))
	assert.Equal(t, "INV-2025-", NumberPrefix(TypeInvoice, 2025))
}

func TestSequenceFromNumber(t *testing.T) {
	tests := []struct {
		number string
		want   int
	}{
		{"Q-2025-0001", 1},
		{"WO-2025-0042", 42},
		{"INV-2025-9999", 9999},
		{"garbage", 0},
		{"Q-2025-", 0},
		{"Q-2025-abcd", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SequenceFromNumber(tt.number), tt.number)
	}
}

func TestYearOf(t *testing.T) {
	assert.Equal(t, 2025, YearOf(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 2026, YearOf(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
