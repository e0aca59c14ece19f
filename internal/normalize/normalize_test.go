package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone_EquivalentFormats(t *testing.T) {
	t.Parallel()

	want := "9876543210"
	assert.Equal(t, want, Phone("+91 98765 43210"))
	assert.Equal(t, want, Phone("09876543210"))
	assert.Equal(t, want, Phone("9876543210"))
	assert.Equal(t, want, Phone("+91-9876543210"))
}

func TestPhone_Idempotent(t *testing.T) {
	t.Parallel()

	once := Phone("+91 98765 43210")
	assert.Equal(t, once, Phone(once))
}

func TestPhone_ShortInput(t *testing.T) {
	t.Parallel()

	// Fails closed: short inputs yield a short key, not an error.
	assert.Equal(t, "12345", Phone("12345"))
	assert.Equal(t, "", Phone(""))
	assert.Equal(t, "12345", Phone("+1 23-45"))
}

func TestUPI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "scammer@ybl", UPI("Scammer@YBL"))
	assert.Equal(t, "scammer@ybl", UPI("  scammer@ybl "))
	// Handles with and without a domain suffix stay distinct.
	assert.NotEqual(t, UPI("scammer"), UPI("scammer@ybl"))
}

func TestExtractPhones_AllPatterns(t *testing.T) {
	t.Parallel()

	text := "Fraud calls from +91 9876543210, also 08765432109 and 9123456789."
	got := ExtractPhones(text)

	assert.Contains(t, got, "+91 9876543210")
	assert.Contains(t, got, "08765432109")
	assert.Contains(t, got, "9123456789")
}

func TestExtractPhones_ExactStringDedupe(t *testing.T) {
	t.Parallel()

	got := ExtractPhones("call 9876543210 or 9876543210")
	assert.Equal(t, []string{"9876543210"}, got)
}

func TestExtractPhones_DifferentFormatsSurvive(t *testing.T) {
	t.Parallel()

	// Two formattings of one physical number both survive extraction;
	// they collapse later under Phone normalization.
	got := ExtractPhones("reported as +919876543210 and 9876543210")
	assert.Len(t, got, 2)
	assert.Equal(t, Phone(got[0]), Phone(got[1]))
}

func TestExtractPhones_NoMatches(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractPhones("no numbers here, just 123 and 555-0100"))
}

func TestExtractPhones_IgnoresNonMobilePrefix(t *testing.T) {
	t.Parallel()

	// Bare 10-digit numbers must start 6-9.
	assert.Empty(t, ExtractPhones("order id 1234567890"))
}
