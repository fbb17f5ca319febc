// test/e2e/e2e_test.go
//
// Drives the full stack over HTTP: chi router, dialogue engine, the
// Postgres-backed order store (sqlmock), the Redis order cache (miniredis)
// and the generative fallback client (httptest stub).
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-support/internal/common/logger"
	"ecommerce-support/internal/engine/dialog"
	"ecommerce-support/internal/engine/kb"
	"ecommerce-support/internal/gateway/genai"
	"ecommerce-support/internal/gateway/history"
	"ecommerce-support/internal/gateway/orders"
	"ecommerce-support/internal/models"
	"ecommerce-support/internal/server"
)

type stack struct {
	handler http.Handler
	mock    sqlmock.Sqlmock
	redis   *miniredis.Miniredis
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"order_id", "user_id", "status", "items", "delivery_estimate", "tracking_number"})
}

func newStack(t *testing.T, genaiReply string) *stack {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	mr := miniredis.RunT(t)
	cache := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	genaiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": genaiReply}},
				}},
			},
		})
		w.Write(body)
	}))
	t.Cleanup(genaiServer.Close)

	log := logger.NewTestLogger(t)

	store := orders.NewStore(db, cache, 5*time.Minute, log)
	generator := genai.NewClient(&genai.Config{
		BaseURL:     genaiServer.URL,
		APIKey:      "test-key",
		Model:       "gemini-2.5-flash",
		Timeout:     2 * time.Second,
		MaxTokens:   512,
		Temperature: 0.7,
	}, log)

	engine := dialog.NewEngine(&dialog.Config{
		DefaultUserID: 1,
		SupportEmail:  "support@ecommerce.com",
	}, store, generator, kb.Default(), log)

	recorder := history.NewRecorder(db, log)
	srv := server.New(engine, recorder, nil, log)

	return &stack{
		handler: srv.Handler(),
		mock:    mock,
		redis:   mr,
	}
}

func (s *stack) expectHistoryWrite() {
	s.mock.ExpectExec(`INSERT INTO conversation_history`).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func (s *stack) chat(t *testing.T, message string, convCtx map[string]interface{}) *models.ChatResponse {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"message": message,
		"context": convCtx,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestTrackOrderConversation(t *testing.T) {
	s := newStack(t, "unused")

	// Turn 1: no order number yet.
	s.expectHistoryWrite()
	resp := s.chat(t, "where is my order", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeClarification, resp.Type)
	assert.Equal(t, true, resp.Context["awaiting_order_number"])
	assert.Contains(t, resp.Message, "order number")

	// Turn 2: the number arrives, context carried over from turn 1.
	s.mock.ExpectQuery(`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number`).
		WithArgs("12346").
		WillReturnRows(orderRows().AddRow("12346", int64(1), "shipped", "Coffee Maker", "2025-01-20", "TRK123456"))
	s.expectHistoryWrite()

	resp = s.chat(t, "12346", resp.Context)

	assert.Equal(t, models.ResponseTypeDatabase, resp.Type)
	assert.Contains(t, resp.Message, "12346")
	assert.Contains(t, resp.Message, "TRK123456")
	require.NotNil(t, resp.OrderInfo)
	assert.Equal(t, models.OrderStatusShipped, resp.OrderInfo.Status)
	assert.NotContains(t, resp.Context, "awaiting_order_number")

	// The order landed in the cache, so a repeat lookup skips Postgres.
	assert.True(t, s.redis.Exists("order:12346"))
	s.expectHistoryWrite()
	resp = s.chat(t, "track order 12346", map[string]interface{}{})
	assert.Equal(t, models.ResponseTypeDatabase, resp.Type)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCancelProcessingOrderCreatesTicket(t *testing.T) {
	s := newStack(t, "unused")

	s.mock.ExpectQuery(`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number`).
		WithArgs("12345").
		WillReturnRows(orderRows().AddRow("12345", int64(3), "processing", "Wireless Headphones", "2025-01-25", nil))
	s.mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(int64(3), "Cancellation request for order #12345 (Wireless Headphones)").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(101))
	s.expectHistoryWrite()

	resp := s.chat(t, "cancel order 12345", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeEscalationConfirmed, resp.Type)
	assert.True(t, resp.NeedsEscalation)
	assert.Equal(t, int64(101), resp.TicketID)
	assert.Contains(t, resp.Message, "ticket #101")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestReturnOffersCancellation(t *testing.T) {
	s := newStack(t, "unused")

	// A processing order can't be returned, so the engine offers to cancel.
	s.mock.ExpectQuery(`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number`).
		WithArgs("12345").
		WillReturnRows(orderRows().AddRow("12345", int64(3), "processing", "Wireless Headphones", "2025-01-25", nil))
	s.expectHistoryWrite()

	resp := s.chat(t, "I want to send back order 12345", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeEscalation, resp.Type)
	assert.True(t, resp.NeedsEscalation)
	assert.Equal(t, true, resp.Context["awaiting_cancel_confirmation"])
	assert.Equal(t, "12345", resp.Context["pending_order_number"])

	// Confirmation resolves the pending order from the cache and raises the
	// ticket for the order's owner.
	s.mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(int64(3), "Cancellation request for order #12345 (Wireless Headphones)").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(102))
	s.expectHistoryWrite()

	resp = s.chat(t, "yes please", resp.Context)

	assert.Equal(t, models.ResponseTypeEscalationConfirmed, resp.Type)
	assert.Equal(t, int64(102), resp.TicketID)
	assert.NotContains(t, resp.Context, "awaiting_cancel_confirmation")
	assert.NotContains(t, resp.Context, "pending_order_number")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestDeclineLeavesOrderAlone(t *testing.T) {
	s := newStack(t, "unused")

	s.expectHistoryWrite()
	resp := s.chat(t, "no thanks", map[string]interface{}{
		"awaiting_cancel_confirmation": true,
		"pending_order_number":         "12345",
	})

	assert.Equal(t, models.ResponseTypeGeneral, resp.Type)
	assert.Contains(t, resp.Message, "won't make any changes")
	assert.NotContains(t, resp.Context, "awaiting_cancel_confirmation")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestKnowledgeBaseAnswer(t *testing.T) {
	s := newStack(t, "unused")

	s.expectHistoryWrite()
	resp := s.chat(t, "what payment methods do you accept", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeKnowledgeBase, resp.Type)
	assert.Contains(t, resp.Message, "PayPal")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestGenerativeFallback(t *testing.T) {
	s := newStack(t, "I'm happy to help with anything about your purchases.")

	s.expectHistoryWrite()
	resp := s.chat(t, "hmm I am not sure what I want", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeGenerated, resp.Type)
	assert.Contains(t, resp.Message, "happy to help")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCreateTicketEndpoint(t *testing.T) {
	s := newStack(t, "unused")

	s.mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(int64(3), "My package arrived damaged").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(77))

	payload := `{"user_id": 3, "issue": "My package arrived damaged"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create_ticket", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var result models.TicketResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(77), result.TicketID)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestUnknownOrderListsSamples(t *testing.T) {
	s := newStack(t, "unused")

	s.mock.ExpectQuery(`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number`).
		WithArgs("99999").
		WillReturnRows(orderRows())
	s.expectHistoryWrite()

	resp := s.chat(t, "track order 99999", map[string]interface{}{})

	assert.Equal(t, models.ResponseTypeError, resp.Type)
	assert.Contains(t, resp.Message, "couldn't find order #99999")
	assert.Contains(t, resp.Message, "12345")

	assert.NoError(t, s.mock.ExpectationsWereMet())
}
