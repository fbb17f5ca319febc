// Package intent classifies user messages into a fixed intent set using
// context flags first and keyword priority rules second.
package intent

import (
	"strings"

	"ecommerce-support/internal/engine/extract"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	TrackOrder            Intent = "track_order"
	ReturnItem            Intent = "return_item"
	ReturnItemWithOrder   Intent = "return_item_with_order"
	ShippingInfo          Intent = "shipping_info"
	PaymentInfo           Intent = "payment_info"
	CancelOrder           Intent = "cancel_order"
	CancelOrderWithNumber Intent = "cancel_order_with_number"
	ChangeAddress         Intent = "change_address"
	ChangeAddressWithNum  Intent = "change_address_with_number"
	ContactSupport        Intent = "contact_support"
	General               Intent = "general"
)

// Context carries the awaiting flags the classifier needs to interpret a
// standalone order number.
type Context struct {
	AwaitingReturnOrderNumber bool
	AwaitingOrderForCancel    bool
	AwaitingOrderForAddress   bool
}

var (
	returnKeywords  = []string{"return", "refund", "send back"}
	trackKeywords   = []string{"track", "status", "where is", "delivery", "order"}
	shipKeywords    = []string{"shipping", "ship", "delivery options", "how long"}
	paymentKeywords = []string{"payment", "pay", "card", "paypal"}
	cancelKeywords  = []string{"cancel", "stop order"}
	addressVerbs    = []string{"change", "update", "modify"}
	contactKeywords = []string{"contact", "support", "speak to", "agent", "human"}
)

// Classify returns the intent of message given the current context flags.
// Context is consulted before keywords: a bare 5-digit number answers
// whichever question is pending.
func Classify(message string, ctx Context) Intent {
	if extract.IsStandalone(message) {
		switch {
		case ctx.AwaitingReturnOrderNumber:
			return ReturnItemWithOrder
		case ctx.AwaitingOrderForCancel:
			return CancelOrderWithNumber
		case ctx.AwaitingOrderForAddress:
			return ChangeAddressWithNum
		default:
			return TrackOrder
		}
	}

	lower := strings.ToLower(message)
	hasNumber := extract.OrderNumber(message) != ""

	// Priority-ordered rules; first match wins.
	if containsAny(lower, returnKeywords) {
		if hasNumber {
			return ReturnItemWithOrder
		}
		return ReturnItem
	}

	if containsAny(lower, trackKeywords) &&
		!containsAny(lower, []string{"return", "refund", "cancel"}) {
		return TrackOrder
	}

	if containsAny(lower, shipKeywords) &&
		!containsAny(lower, trackKeywords) && !hasNumber {
		return ShippingInfo
	}

	if containsAny(lower, paymentKeywords) {
		return PaymentInfo
	}

	if containsAny(lower, cancelKeywords) {
		return CancelOrder
	}

	if strings.Contains(lower, "address") && containsAny(lower, addressVerbs) {
		return ChangeAddress
	}

	if containsAny(lower, contactKeywords) {
		return ContactSupport
	}

	return General
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
