package dialog

// StateKind identifies which awaiting state, if any, governs the next turn.
type StateKind int

const (
	StateIdle StateKind = iota
	StateAwaitingOrderNumber
	StateAwaitingReturnOrderNumber
	StateAwaitingOrderForCancel
	StateAwaitingOrderForAddress
	StateAwaitingAddressChangeConfirmation
	StateAwaitingCancelConfirmation
)

// State is the decoded dialogue state. At most one awaiting state governs a
// turn; the confirmation states carry the order number the question was about.
type State struct {
	Kind               StateKind
	PendingOrderNumber string
}

// Wire context keys. The flat flag map is the caller-visible encoding and is
// kept for compatibility with existing clients.
const (
	keyAwaitingOrderNumber        = "awaiting_order_number"
	keyAwaitingReturnOrderNumber  = "awaiting_return_order_number"
	keyAwaitingOrderForCancel     = "awaiting_order_for_cancel"
	keyAwaitingOrderForAddress    = "awaiting_order_for_address"
	keyAwaitingAddressChangeConf  = "awaiting_address_change_confirmation"
	keyAwaitingCancelConfirmation = "awaiting_cancel_confirmation"
	keyPendingOrderNumber         = "pending_order_number"
)

var stateKeys = []string{
	keyAwaitingOrderNumber,
	keyAwaitingReturnOrderNumber,
	keyAwaitingOrderForCancel,
	keyAwaitingOrderForAddress,
	keyAwaitingAddressChangeConf,
	keyAwaitingCancelConfirmation,
	keyPendingOrderNumber,
}

// DecodeState maps the wire context onto a single State. When several flags
// are set at once, the canonical priority order decides which one wins.
func DecodeState(ctx map[string]interface{}) State {
	switch {
	case flagSet(ctx, keyAwaitingOrderNumber):
		return State{Kind: StateAwaitingOrderNumber}
	case flagSet(ctx, keyAwaitingReturnOrderNumber):
		return State{Kind: StateAwaitingReturnOrderNumber}
	case flagSet(ctx, keyAwaitingOrderForCancel):
		return State{Kind: StateAwaitingOrderForCancel}
	case flagSet(ctx, keyAwaitingOrderForAddress):
		return State{Kind: StateAwaitingOrderForAddress}
	case flagSet(ctx, keyAwaitingAddressChangeConf):
		return State{Kind: StateAwaitingAddressChangeConfirmation, PendingOrderNumber: stringValue(ctx, keyPendingOrderNumber)}
	case flagSet(ctx, keyAwaitingCancelConfirmation):
		return State{Kind: StateAwaitingCancelConfirmation, PendingOrderNumber: stringValue(ctx, keyPendingOrderNumber)}
	}
	return State{Kind: StateIdle}
}

// EncodeState writes next onto a copy of the incoming wire context. All state
// keys are cleared first; keys the engine does not own pass through untouched.
func EncodeState(ctx map[string]interface{}, next State) map[string]interface{} {
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	for _, key := range stateKeys {
		delete(out, key)
	}

	switch next.Kind {
	case StateAwaitingOrderNumber:
		out[keyAwaitingOrderNumber] = true
	case StateAwaitingReturnOrderNumber:
		out[keyAwaitingReturnOrderNumber] = true
	case StateAwaitingOrderForCancel:
		out[keyAwaitingOrderForCancel] = true
	case StateAwaitingOrderForAddress:
		out[keyAwaitingOrderForAddress] = true
	case StateAwaitingAddressChangeConfirmation:
		out[keyAwaitingAddressChangeConf] = true
		out[keyPendingOrderNumber] = next.PendingOrderNumber
	case StateAwaitingCancelConfirmation:
		out[keyAwaitingCancelConfirmation] = true
		out[keyPendingOrderNumber] = next.PendingOrderNumber
	}

	return out
}

// flagSet tolerates both boolean and string truthy values, since callers
// round-trip the context through JSON.
func flagSet(ctx map[string]interface{}, key string) bool {
	switch v := ctx[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func stringValue(ctx map[string]interface{}, key string) string {
	if s, ok := ctx[key].(string); ok {
		return s
	}
	return ""
}
