package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_StandaloneNumber(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		ctx      Context
		expected Intent
	}{
		{"no flags defaults to tracking", "12345", Context{}, TrackOrder},
		{"return flag", "12345", Context{AwaitingReturnOrderNumber: true}, ReturnItemWithOrder},
		{"cancel flag", "12345", Context{AwaitingOrderForCancel: true}, CancelOrderWithNumber},
		{"address flag", "12345", Context{AwaitingOrderForAddress: true}, ChangeAddressWithNum},
		{"whitespace around number", "  54321 ", Context{AwaitingOrderForCancel: true}, CancelOrderWithNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.message, tt.ctx))
		})
	}
}

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected Intent
	}{
		{"refund with embedded number", "I want a refund for 54321", ReturnItemWithOrder},
		{"return without number", "I want to return my purchase", ReturnItem},
		{"send back", "can I send back this item", ReturnItem},
		{"tracking", "where is my package, what's the order status", TrackOrder},
		{"tracking suppressed by refund", "refund status please", ReturnItem},
		{"shipping question", "how long does shipping take", ShippingInfo},
		{"shipping suppressed by tracking word", "what are the delivery options for my order", TrackOrder},
		{"payment", "do you accept paypal", PaymentInfo},
		{"cancel", "please cancel my purchase", CancelOrder},
		{"address needs a verb", "what's my shipping address", ShippingInfo},
		{"address change", "I need to update my address", ChangeAddress},
		{"contact support", "let me speak to a human", ContactSupport},
		{"general fallthrough", "tell me a joke", General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.message, Context{}))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Return keywords outrank tracking keywords even when both appear.
	assert.Equal(t, ReturnItem, Classify("I want to return this order", Context{}))

	// Cancel suppresses the tracking rule.
	assert.Equal(t, CancelOrder, Classify("cancel the order delivery", Context{}))

	// A number in the text upgrades a return to the with-order variant.
	assert.Equal(t, ReturnItemWithOrder, Classify("return order 12345", Context{}))
}
