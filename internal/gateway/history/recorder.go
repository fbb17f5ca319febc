// Package history records completed chat turns in the conversation_history
// table. Writes are best-effort and never affect the reply.
package history

import (
	"context"
	"database/sql"

	"ecommerce-support/internal/common/logger"
	"ecommerce-support/internal/common/metrics"
)

// Turn is one completed exchange.
type Turn struct {
	UserMessage  string
	BotReply     string
	ResponseType string
}

// Recorder writes turns to Postgres.
type Recorder struct {
	db  *sql.DB
	log logger.Logger
}

func NewRecorder(db *sql.DB, log logger.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Record inserts the turn. Failures are logged and swallowed; the caller's
// reply has already been decided.
func (r *Recorder) Record(ctx context.Context, turn Turn) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversation_history (user_message, bot_reply, response_type, created_date)
		 VALUES ($1, $2, $3, NOW())`,
		turn.UserMessage, turn.BotReply, turn.ResponseType)
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("record_history").Inc()
		r.log.Warn("conversation history write failed", map[string]interface{}{"error": err.Error()})
	}
}
