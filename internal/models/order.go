package models

// OrderStatus is the lifecycle state of an order as stored in the orders table.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a single order record returned by the order gateway.
type Order struct {
	OrderID          string      `json:"order_id"`
	UserID           int64       `json:"user_id"`
	Status           OrderStatus `json:"status"`
	Items            string      `json:"items"`
	DeliveryEstimate string      `json:"delivery_estimate,omitempty"`
	TrackingNumber   string      `json:"tracking_number,omitempty"`
}

// Ticket is a support ticket row.
type Ticket struct {
	TicketID int64  `json:"ticket_id"`
	UserID   int64  `json:"user_id"`
	Issue    string `json:"issue"`
	Status   string `json:"status"`
}
