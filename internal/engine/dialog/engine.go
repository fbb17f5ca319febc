// Package dialog implements the dialogue state machine that turns a user
// message plus caller-held context into a reply, side effects, and the next
// context.
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecommerce-support/internal/common/logger"
	"ecommerce-support/internal/common/metrics"
	"ecommerce-support/internal/engine/extract"
	"ecommerce-support/internal/engine/intent"
	"ecommerce-support/internal/engine/kb"
	"ecommerce-support/internal/models"
)

var (
	ErrOrderNotFound = errors.New("ORDER_NOT_FOUND")
	ErrMissingInput  = errors.New("MISSING_INPUT")
)

// OrderGateway is the order and ticket store the engine consults.
type OrderGateway interface {
	FetchOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	FetchOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	CreateTicket(ctx context.Context, userID int64, issue string) (int64, error)
}

// TextGenerator produces free text for turns the state machine cannot
// resolve deterministically.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds engine tunables.
type Config struct {
	DefaultUserID int64
	SupportEmail  string
}

// Engine is the authoritative decision point for every chat turn.
type Engine struct {
	orders OrderGateway
	gen    TextGenerator
	kb     *kb.KnowledgeBase
	log    logger.Logger

	defaultUserID int64
	supportEmail  string
}

// Demo orders seeded by the database setup script.
const sampleOrderIDs = "12345, 12346, 12347, 12348, 12349, 12350"

const apologyMessage = "I apologize, but I'm having trouble processing your request. Please try again or contact our support team."

var affirmations = []string{"yes", "sure", "please", "ok", "yeah", "yep", "confirm"}

// NewEngine builds an Engine. cfg may be nil, in which case demo defaults
// apply.
func NewEngine(cfg *Config, orders OrderGateway, gen TextGenerator, knowledge *kb.KnowledgeBase, log logger.Logger) *Engine {
	e := &Engine{
		orders:        orders,
		gen:           gen,
		kb:            knowledge,
		log:           log,
		defaultUserID: 1,
		supportEmail:  "support@ecommerce.com",
	}
	if cfg != nil {
		if cfg.DefaultUserID != 0 {
			e.defaultUserID = cfg.DefaultUserID
		}
		if cfg.SupportEmail != "" {
			e.supportEmail = cfg.SupportEmail
		}
	}
	return e
}

// requested actions for the shared order-status branch
type orderAction int

const (
	actionTrack orderAction = iota
	actionReturn
	actionCancel
	actionAddressChange
)

// HandleTurn runs one dialogue turn. The incoming context is never mutated;
// the response carries the updated copy. The only error returned is
// ErrMissingInput; every collaborator failure degrades into a valid reply.
func (e *Engine) HandleTurn(ctx context.Context, message string, convCtx map[string]interface{}) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrMissingInput
	}
	if convCtx == nil {
		convCtx = map[string]interface{}{}
	}

	state := DecodeState(convCtx)

	// Awaiting states consume the turn before fresh classification.
	switch state.Kind {
	case StateAwaitingOrderNumber:
		return e.handleAwaitedNumber(ctx, message, convCtx, state, actionTrack), nil
	case StateAwaitingReturnOrderNumber:
		return e.handleAwaitedNumber(ctx, message, convCtx, state, actionReturn), nil
	case StateAwaitingOrderForCancel:
		return e.handleAwaitedNumber(ctx, message, convCtx, state, actionCancel), nil
	case StateAwaitingOrderForAddress:
		return e.handleAwaitedNumber(ctx, message, convCtx, state, actionAddressChange), nil
	case StateAwaitingAddressChangeConfirmation:
		return e.handleConfirmation(ctx, message, convCtx, state, actionAddressChange), nil
	case StateAwaitingCancelConfirmation:
		return e.handleConfirmation(ctx, message, convCtx, state, actionCancel), nil
	}

	detected := intent.Classify(message, intent.Context{})
	metrics.ChatTurnsTotal.WithLabelValues(string(detected)).Inc()

	switch detected {
	case intent.TrackOrder:
		return e.handleOrderIntent(ctx, message, convCtx, actionTrack, StateAwaitingOrderNumber,
			"I can help you track your order! Could you please provide your order number?"), nil
	case intent.ReturnItem, intent.ReturnItemWithOrder:
		return e.handleOrderIntent(ctx, message, convCtx, actionReturn, StateAwaitingReturnOrderNumber,
			"I can help with your return. Could you please provide your 5-digit order number?"), nil
	case intent.CancelOrder, intent.CancelOrderWithNumber:
		return e.handleOrderIntent(ctx, message, convCtx, actionCancel, StateAwaitingOrderForCancel,
			"I can help cancel your order. Could you please provide your 5-digit order number?"), nil
	case intent.ChangeAddress, intent.ChangeAddressWithNum:
		return e.handleOrderIntent(ctx, message, convCtx, actionAddressChange, StateAwaitingOrderForAddress,
			"I can help update your delivery address. Could you please provide your 5-digit order number?"), nil
	case intent.ShippingInfo, intent.PaymentInfo, intent.ContactSupport:
		return e.handleKnowledgeIntent(ctx, message, convCtx), nil
	default:
		return e.handleGeneral(ctx, message, convCtx), nil
	}
}

// handleOrderIntent covers the fresh track/return/cancel/address intents:
// with a number it runs the status branch inline, without one it starts a
// clarification cycle.
func (e *Engine) handleOrderIntent(ctx context.Context, message string, convCtx map[string]interface{}, action orderAction, awaiting StateKind, ask string) *models.ChatResponse {
	orderNum := extract.OrderNumber(message)
	if orderNum == "" {
		return e.respond(&models.ChatResponse{
			Message: ask,
			Type:    models.ResponseTypeClarification,
			Context: EncodeState(convCtx, State{Kind: awaiting}),
		})
	}
	return e.resolveOrderAction(ctx, convCtx, orderNum, action)
}

// handleAwaitedNumber runs when the previous turn asked for an order number
// and this message should contain it.
func (e *Engine) handleAwaitedNumber(ctx context.Context, message string, convCtx map[string]interface{}, state State, action orderAction) *models.ChatResponse {
	orderNum := extract.OrderNumber(message)
	if orderNum == "" {
		// Re-prompt without losing the awaiting state.
		return e.respond(&models.ChatResponse{
			Message: "I need a valid 5-digit order number. Could you please provide it?",
			Type:    models.ResponseTypeClarification,
			Context: EncodeState(convCtx, state),
		})
	}
	return e.resolveOrderAction(ctx, convCtx, orderNum, action)
}

// resolveOrderAction fetches the order and applies the shared status branch.
func (e *Engine) resolveOrderAction(ctx context.Context, convCtx map[string]interface{}, orderNum string, action orderAction) *models.ChatResponse {
	order, err := e.orders.FetchOrderByID(ctx, orderNum)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			e.log.Error("order lookup failed", map[string]interface{}{"order_id": orderNum, "error": err.Error()})
		}
		return e.respond(&models.ChatResponse{
			Message:         fmt.Sprintf("I couldn't find order #%s in our system. Please double-check the number. Our sample store currently has orders: %s.", orderNum, sampleOrderIDs),
			Type:            models.ResponseTypeError,
			NeedsEscalation: true,
			Context:         EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}

	outcome := statusBranch(action, order)

	resp := &models.ChatResponse{
		Message:         outcome.message,
		Type:            outcome.responseType,
		NeedsEscalation: outcome.needsEscalation,
		Context:         EncodeState(convCtx, outcome.nextState),
		OrderInfo:       order,
	}

	if outcome.createTicket {
		return e.createTicketResponse(ctx, convCtx, order, action)
	}
	return e.respond(resp)
}

// handleConfirmation resolves a yes/no answer to a pending cancel or
// address-change offer. Anything that is not an affirmation counts as a
// decline.
func (e *Engine) handleConfirmation(ctx context.Context, message string, convCtx map[string]interface{}, state State, action orderAction) *models.ChatResponse {
	if !isAffirmative(message) {
		return e.respond(&models.ChatResponse{
			Message: "No problem, I won't make any changes. Is there anything else I can help you with?",
			Type:    models.ResponseTypeGeneral,
			Context: EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}

	var order *models.Order
	if state.PendingOrderNumber != "" {
		o, err := e.orders.FetchOrderByID(ctx, state.PendingOrderNumber)
		if err == nil {
			order = o
		} else if !errors.Is(err, ErrOrderNotFound) {
			e.log.Error("order lookup failed", map[string]interface{}{"order_id": state.PendingOrderNumber, "error": err.Error()})
		}
	}
	if order == nil {
		// The offer referenced an order we can no longer resolve; raise the
		// ticket against the demo user with what we know.
		order = &models.Order{OrderID: state.PendingOrderNumber, UserID: e.defaultUserID}
	}

	return e.createTicketResponse(ctx, convCtx, order, action)
}

// createTicketResponse builds the issue description, requests the ticket, and
// reports the outcome. Every path that raises a ticket in-dialogue ends here.
func (e *Engine) createTicketResponse(ctx context.Context, convCtx map[string]interface{}, order *models.Order, action orderAction) *models.ChatResponse {
	userID := order.UserID
	if userID == 0 {
		userID = e.defaultUserID
	}

	var issue, verb string
	switch action {
	case actionAddressChange:
		issue = fmt.Sprintf("Address change request for order #%s (%s)", order.OrderID, order.Items)
		verb = "address change"
	default:
		issue = fmt.Sprintf("Cancellation request for order #%s (%s)", order.OrderID, order.Items)
		verb = "cancellation"
	}

	ticketID, err := e.orders.CreateTicket(ctx, userID, issue)
	if err != nil || ticketID == 0 {
		if err != nil {
			e.log.Error("ticket creation failed", map[string]interface{}{"order_id": order.OrderID, "error": err.Error()})
		}
		metrics.GatewayErrorsTotal.WithLabelValues("create_ticket").Inc()
		return e.respond(&models.ChatResponse{
			Message:         fmt.Sprintf("I'm sorry, I couldn't create the ticket right now. Please try again or email %s.", e.supportEmail),
			Type:            models.ResponseTypeError,
			NeedsEscalation: true,
			Context:         EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}

	metrics.TicketsCreatedTotal.Inc()
	return e.respond(&models.ChatResponse{
		Message:         fmt.Sprintf("I've created %s ticket #%d for order #%s. Our team will process it shortly and keep you updated by email.", verb, ticketID, order.OrderID),
		Type:            models.ResponseTypeEscalationConfirmed,
		NeedsEscalation: true,
		Context:         EncodeState(convCtx, State{Kind: StateIdle}),
		OrderInfo:       order,
		TicketID:        ticketID,
	})
}

// handleKnowledgeIntent serves shipping, payment, and contact questions from
// the knowledge base, falling back to generated text when nothing matches.
func (e *Engine) handleKnowledgeIntent(ctx context.Context, message string, convCtx map[string]interface{}) *models.ChatResponse {
	kbInfo := e.kb.Lookup(message)
	if len(kbInfo) > 0 {
		return e.respond(&models.ChatResponse{
			Message: strings.Join(kbInfo, " "),
			Type:    models.ResponseTypeKnowledgeBase,
			Context: EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}
	return e.generateResponse(ctx, message, convCtx, nil, nil)
}

// handleGeneral tries the knowledge base first and otherwise hands the raw
// message to the generative fallback.
func (e *Engine) handleGeneral(ctx context.Context, message string, convCtx map[string]interface{}) *models.ChatResponse {
	kbInfo := e.kb.Lookup(message)
	if len(kbInfo) > 0 {
		return e.respond(&models.ChatResponse{
			Message: strings.Join(kbInfo, " "),
			Type:    models.ResponseTypeKnowledgeBase,
			Context: EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}
	return e.generateResponse(ctx, message, convCtx, nil, nil)
}

// generateResponse calls the generative fallback once; a failure substitutes
// the fixed apology and never propagates.
func (e *Engine) generateResponse(ctx context.Context, message string, convCtx map[string]interface{}, dbInfo *models.Order, kbInfo []string) *models.ChatResponse {
	text, err := e.gen.Generate(ctx, buildPrompt(message, dbInfo, kbInfo))
	if err != nil {
		e.log.Warn("generative fallback failed", map[string]interface{}{"error": err.Error()})
		metrics.GatewayErrorsTotal.WithLabelValues("generate_text").Inc()
		return e.respond(&models.ChatResponse{
			Message: apologyMessage,
			Type:    models.ResponseTypeFallback,
			Context: EncodeState(convCtx, State{Kind: StateIdle}),
		})
	}
	return e.respond(&models.ChatResponse{
		Message: text,
		Type:    models.ResponseTypeGenerated,
		Context: EncodeState(convCtx, State{Kind: StateIdle}),
	})
}

// CreateTicketDirect creates a support ticket outside the dialogue flow.
// When the issue text embeds a known order number the description is enriched
// with that order's items, best-effort.
func (e *Engine) CreateTicketDirect(ctx context.Context, userID int64, issue string) *models.TicketResult {
	if userID == 0 {
		userID = e.defaultUserID
	}

	if num := extract.OrderNumber(issue); num != "" {
		if orders, err := e.orders.FetchOrdersByUser(ctx, userID); err == nil {
			for _, o := range orders {
				if o.OrderID == num {
					issue = fmt.Sprintf("%s [order #%s: %s, status %s]", issue, o.OrderID, o.Items, o.Status)
					break
				}
			}
		}
	}

	ticketID, err := e.orders.CreateTicket(ctx, userID, issue)
	if err != nil || ticketID == 0 {
		if err != nil {
			e.log.Error("direct ticket creation failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
		}
		metrics.GatewayErrorsTotal.WithLabelValues("create_ticket").Inc()
		return &models.TicketResult{
			Success: false,
			Message: "Failed to create ticket. Please try again.",
		}
	}

	metrics.TicketsCreatedTotal.Inc()
	return &models.TicketResult{
		Success:  true,
		TicketID: ticketID,
		Message:  fmt.Sprintf("Support ticket #%d has been created. Our team will contact you within 24 hours.", ticketID),
	}
}

func (e *Engine) respond(resp *models.ChatResponse) *models.ChatResponse {
	metrics.ChatResponsesTotal.WithLabelValues(string(resp.Type)).Inc()
	return resp
}

func isAffirmative(message string) bool {
	lower := strings.ToLower(message)
	for _, word := range affirmations {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// buildPrompt assembles the generative prompt: role preamble, the user query,
// optional serialized order data, optional KB snippets, and the closing
// conciseness instruction.
func buildPrompt(message string, dbInfo *models.Order, kbInfo []string) string {
	parts := []string{
		"You are a helpful e-commerce customer support assistant.",
		fmt.Sprintf("User Query: %s", message),
	}

	if dbInfo != nil {
		data, err := json.Marshal(dbInfo)
		if err == nil {
			parts = append(parts, fmt.Sprintf("Database Information: %s", data))
		}
	}

	if len(kbInfo) > 0 {
		parts = append(parts, fmt.Sprintf("Knowledge Base Information: %s", strings.Join(kbInfo, " ")))
	}

	parts = append(parts, "Please provide a helpful, concise, and friendly response. If you need more information from the user, ask clearly. Keep responses under 3 sentences unless providing detailed information.")

	return strings.Join(parts, "\n\n")
}
