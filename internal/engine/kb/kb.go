// Package kb holds the static knowledge base and its keyword lookup.
package kb

import "strings"

// Entry is a topic key mapped to its canned answer. The key's
// underscore-separated parts are the match keywords.
type Entry struct {
	Key    string
	Answer string
}

// KnowledgeBase is an ordered set of entries. Lookup results follow
// definition order.
type KnowledgeBase struct {
	entries []Entry
}

// New builds a knowledge base from the given entries.
func New(entries []Entry) *KnowledgeBase {
	return &KnowledgeBase{entries: entries}
}

// Default returns the built-in support knowledge base.
func Default() *KnowledgeBase {
	return New([]Entry{
		{Key: "return_policy", Answer: "You can return items within 30 days of delivery. Items must be unused and in original packaging. Visit our Returns page or contact support with your order number."},
		{Key: "shipping_options", Answer: "We offer Standard (5-7 days, $5), Express (2-3 days, $15), and Overnight shipping ($25). Shipping costs may vary by location."},
		{Key: "payment_methods", Answer: "We accept all major credit cards (Visa, Mastercard, Amex), debit cards, PayPal, Apple Pay, and Google Pay."},
		{Key: "track_order", Answer: "You can track your order using your order number. Provide your order number and I will check the current status."},
		{Key: "cancel_order", Answer: "Orders can be cancelled within 24 hours of placement if they haven't shipped yet. After shipping, you'll need to initiate a return."},
		{Key: "customer_support", Answer: "Our customer support team is available 24/7. Email: support@ecommerce.com | Phone: 1-800-SUPPORT"},
		{Key: "warranty", Answer: "All products come with a 1-year manufacturer warranty. Extended warranties are available at checkout."},
		{Key: "refund_process", Answer: "Refunds are processed within 5-7 business days after we receive your returned item. You'll receive an email confirmation."},
	})
}

// Lookup returns the answers of every entry whose key keywords appear in the
// query, in definition order. An empty result means no match.
func (k *KnowledgeBase) Lookup(query string) []string {
	queryLower := strings.ToLower(query)
	var relevant []string

	for _, entry := range k.entries {
		keywords := strings.Split(entry.Key, "_")
		for _, keyword := range keywords {
			if strings.Contains(queryLower, keyword) {
				relevant = append(relevant, entry.Answer)
				break
			}
		}
	}

	return relevant
}
