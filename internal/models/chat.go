package models

// ResponseType classifies how a reply was produced.
type ResponseType string

const (
	ResponseTypeClarification       ResponseType = "clarification"
	ResponseTypeDatabase            ResponseType = "database_response"
	ResponseTypeKnowledgeBase       ResponseType = "knowledge_base_response"
	ResponseTypeEscalation          ResponseType = "escalation"
	ResponseTypeEscalationConfirmed ResponseType = "escalation_confirmed"
	ResponseTypeGenerated           ResponseType = "generated_response"
	ResponseTypeFallback            ResponseType = "fallback"
	ResponseTypeError               ResponseType = "error"
	ResponseTypeGeneral             ResponseType = "general"
)

// ChatRequest is the inbound body of POST /api/chat. Context carries the
// caller-held dialogue flags between turns.
type ChatRequest struct {
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ChatResponse is the result of one dialogue turn.
type ChatResponse struct {
	Message         string                 `json:"message"`
	Type            ResponseType           `json:"type"`
	NeedsEscalation bool                   `json:"needs_escalation"`
	Context         map[string]interface{} `json:"context"`
	OrderInfo       *Order                 `json:"order_info,omitempty"`
	TicketID        int64                  `json:"ticket_id,omitempty"`
}

// TicketRequest is the inbound body of POST /api/create_ticket.
type TicketRequest struct {
	UserID int64  `json:"user_id,omitempty"`
	Issue  string `json:"issue"`
}

// TicketResult is the outcome of a direct ticket creation.
type TicketResult struct {
	Success  bool   `json:"success"`
	TicketID int64  `json:"ticket_id,omitempty"`
	Message  string `json:"message"`
}
