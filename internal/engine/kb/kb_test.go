package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	knowledge := Default()

	tests := []struct {
		name     string
		query    string
		expected int
		contains string
	}{
		{"return question", "what is your return policy", 1, "within 30 days of delivery"},
		{"payment question", "what payment methods do you accept", 1, "PayPal"},
		{"warranty question", "does this come with a warranty", 1, "1-year manufacturer warranty"},
		{"case insensitive", "WHAT ABOUT REFUNDS", 1, "Refunds are processed"},
		{"no match", "tell me a joke", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := knowledge.Lookup(tt.query)
			assert.Len(t, answers, tt.expected)
			if tt.contains != "" {
				assert.Contains(t, answers[0], tt.contains)
			}
		})
	}
}

func TestLookup_MultipleMatchesKeepDefinitionOrder(t *testing.T) {
	knowledge := Default()

	// "order" matches track_order and cancel_order; "shipping" matches
	// shipping_options. Results must follow definition order.
	answers := knowledge.Lookup("shipping for my order")

	assert.Len(t, answers, 3)
	assert.Contains(t, answers[0], "Standard (5-7 days, $5)")
	assert.Contains(t, answers[1], "track your order")
	assert.Contains(t, answers[2], "cancelled within 24 hours")
}

func TestLookup_Idempotent(t *testing.T) {
	knowledge := Default()

	first := knowledge.Lookup("shipping and payment options")
	second := knowledge.Lookup("shipping and payment options")

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestLookup_EntryMatchesOnAnyKeyword(t *testing.T) {
	knowledge := New([]Entry{
		{Key: "alpha_beta", Answer: "first"},
		{Key: "gamma", Answer: "second"},
	})

	assert.Equal(t, []string{"first"}, knowledge.Lookup("tell me about beta"))
	assert.Equal(t, []string{"first"}, knowledge.Lookup("alpha and beta"))
	assert.Equal(t, []string{"second"}, knowledge.Lookup("pure gamma ray"))
}
