package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Type identifies the kind of commercial document a number belongs to
type Type string

const (
	TypeQuotation Type = "quotation"
	TypeWorkOrder Type = "work_order"
	TypeInvoice   Type = "invoice"
)

// IsValid checks if the type is a known document type
func (t Type) IsValid() bool {
	switch t {
	case TypeQuotation, TypeWorkOrder, TypeInvoice:
		return true
	}
	return false
}

// Prefix returns the number prefix for the document type
func (t Type) Prefix() string {
	switch t {
	case TypeQuotation:
		return "Q"
	case TypeWorkOrder:
		return "WO"
	case TypeInvoice:
		return "INV"
	}
	return ""
}

// NumberPattern is the only externally significant persisted string format:
// {PREFIX}-{year}-{seq}, e.g. Q-2025-0001.
var NumberPattern = regexp.MustCompile(`^(Q|WO|INV)-\d{4}-\d{4}$`)

// FormatNumber renders a document number for the given type, year and sequence
func FormatNumber(t Type, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", t.Prefix(), year, seq)
}

// NumberPrefix returns the search prefix for all numbers of a type in a year,
// e.g. "WO-2025-".
func NumberPrefix(t Type, year int) string {
	return fmt.Sprintf("%s-%d-", t.Prefix(), year)
}

// SequenceFromNumber parses the numeric suffix of a document number.
// Returns 0 when the number does not carry a parseable sequence.
func SequenceFromNumber(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}

// YearOf returns the calendar year used for number scoping
func YearOf(now time.Time) int {
	return now.Year()
}
