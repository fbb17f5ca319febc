// Package orders is the Postgres-backed order and ticket store, with a
// Redis read-through cache on single-order lookups.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "ecommerce-support/internal/common/errors"
	"ecommerce-support/internal/common/logger"
	"ecommerce-support/internal/common/metrics"
	"ecommerce-support/internal/engine/dialog"
	"ecommerce-support/internal/models"
)

const orderCacheKeyPrefix = "order:"

// Store implements dialog.OrderGateway against Postgres. The cache client is
// optional; with a nil client every lookup goes to the database.
type Store struct {
	db       *sql.DB
	cache    *redis.Client
	cacheTTL time.Duration
	log      logger.Logger
}

func NewStore(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// FetchOrderByID returns the order with the given id, or
// dialog.ErrOrderNotFound when no row exists.
func (s *Store) FetchOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	if order := s.cachedOrder(ctx, orderID); order != nil {
		return order, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number
		 FROM orders WHERE order_id = $1`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dialog.ErrOrderNotFound
		}
		metrics.GatewayErrorsTotal.WithLabelValues("fetch_order").Inc()
		return nil, commonerrors.NewQueryExecutionError(err.Error())
	}

	s.cacheOrder(ctx, order)
	return order, nil
}

// FetchOrdersByUser returns the user's orders, newest first.
func (s *Store) FetchOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, user_id, status, items, delivery_estimate, tracking_number
		 FROM orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("fetch_user_orders").Inc()
		return nil, commonerrors.NewQueryExecutionError(err.Error())
	}
	defer rows.Close()

	var result []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, commonerrors.NewQueryExecutionError(err.Error())
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionError(err.Error())
	}

	return result, nil
}

// CreateTicket inserts an open ticket and returns its id.
func (s *Store) CreateTicket(ctx context.Context, userID int64, issue string) (int64, error) {
	var ticketID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tickets (user_id, issue_description, status, created_date)
		 VALUES ($1, $2, 'open', NOW()) RETURNING ticket_id`, userID, issue).Scan(&ticketID)
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues("create_ticket").Inc()
		return 0, commonerrors.NewTicketCreationFailedError(err.Error())
	}
	return ticketID, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var estimate, tracking sql.NullString

	if err := row.Scan(&order.OrderID, &order.UserID, &order.Status, &order.Items, &estimate, &tracking); err != nil {
		return nil, err
	}

	order.DeliveryEstimate = estimate.String
	order.TrackingNumber = tracking.String
	return &order, nil
}

func (s *Store) cachedOrder(ctx context.Context, orderID string) *models.Order {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, orderCacheKeyPrefix+orderID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("order cache read failed", map[string]interface{}{"order_id": orderID, "error": err.Error()})
		}
		return nil
	}

	var order models.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		s.log.Warn("order cache entry corrupt", map[string]interface{}{"order_id": orderID, "error": err.Error()})
		return nil
	}
	return &order
}

func (s *Store) cacheOrder(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(order)
	if err != nil {
		return
	}
	key := fmt.Sprintf("%s%s", orderCacheKeyPrefix, order.OrderID)
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.log.Warn("order cache write failed", map[string]interface{}{"order_id": order.OrderID, "error": err.Error()})
	}
}
