package dialog

import (
	"fmt"

	"ecommerce-support/internal/models"
)

// branchOutcome is the result of the shared order-status branch: the reply,
// its classification, the next dialogue state, and whether a ticket should be
// raised right away.
type branchOutcome struct {
	message         string
	responseType    models.ResponseType
	needsEscalation bool
	nextState       State
	createTicket    bool
}

// statusBranch is the canonical four-way order-status rule, applied
// identically in every dialogue path that touches an order:
// processing is escalatable, shipped is terminal informative, delivered is
// actionable only for returns, cancelled is a no-op.
func statusBranch(action orderAction, order *models.Order) branchOutcome {
	switch action {
	case actionTrack:
		return trackBranch(order)
	case actionReturn:
		return returnBranch(order)
	case actionCancel:
		return cancelBranch(order)
	case actionAddressChange:
		return addressBranch(order)
	}
	return trackBranch(order)
}

func trackBranch(order *models.Order) branchOutcome {
	out := branchOutcome{
		responseType: models.ResponseTypeDatabase,
		nextState:    State{Kind: StateIdle},
	}

	switch order.Status {
	case models.OrderStatusShipped:
		out.message = fmt.Sprintf("Your order #%s (%s) has shipped. Estimated delivery: %s.", order.OrderID, order.Items, order.DeliveryEstimate)
		if order.TrackingNumber != "" {
			out.message += fmt.Sprintf(" Tracking number: %s.", order.TrackingNumber)
		}
	case models.OrderStatusProcessing:
		out.message = fmt.Sprintf("Your order #%s (%s) is being processed. Estimated delivery: %s.", order.OrderID, order.Items, order.DeliveryEstimate)
	case models.OrderStatusDelivered:
		out.message = fmt.Sprintf("Your order #%s (%s) has been delivered. We hope you're enjoying it!", order.OrderID, order.Items)
	case models.OrderStatusCancelled:
		out.message = fmt.Sprintf("Your order #%s has been cancelled. If you have any questions, our support team can help.", order.OrderID)
	default:
		out.message = fmt.Sprintf("Order #%s status: %s.", order.OrderID, order.Status)
	}

	return out
}

func returnBranch(order *models.Order) branchOutcome {
	switch order.Status {
	case models.OrderStatusDelivered:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s (%s) was delivered and is eligible for return within 30 days of delivery. Please make sure the items are unused and in original packaging, then visit our Returns page to start the process.", order.OrderID, order.Items),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusShipped:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s is still in transit. Once it's delivered you can start a return within 30 days.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusCancelled:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s was cancelled, so there's nothing to return.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusProcessing:
		// Nothing to return yet; offer a cancellation instead.
		return branchOutcome{
			message:         fmt.Sprintf("Order #%s (%s) hasn't shipped yet, so instead of a return I can cancel it for you. Would you like me to cancel this order?", order.OrderID, order.Items),
			responseType:    models.ResponseTypeEscalation,
			needsEscalation: true,
			nextState:       State{Kind: StateAwaitingCancelConfirmation, PendingOrderNumber: order.OrderID},
		}
	}
	return branchOutcome{
		message:      fmt.Sprintf("Order #%s status: %s.", order.OrderID, order.Status),
		responseType: models.ResponseTypeDatabase,
		nextState:    State{Kind: StateIdle},
	}
}

func cancelBranch(order *models.Order) branchOutcome {
	switch order.Status {
	case models.OrderStatusProcessing:
		// The provided number confirms intent; no extra confirmation round.
		return branchOutcome{createTicket: true}
	case models.OrderStatusShipped:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s has already shipped, so it can't be cancelled. Once it arrives you can start a return instead.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusDelivered:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s has already been delivered, so it can't be cancelled. You can start a return instead.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusCancelled:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s is already cancelled.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	}
	return branchOutcome{
		message:      fmt.Sprintf("Order #%s status: %s.", order.OrderID, order.Status),
		responseType: models.ResponseTypeDatabase,
		nextState:    State{Kind: StateIdle},
	}
}

func addressBranch(order *models.Order) branchOutcome {
	switch order.Status {
	case models.OrderStatusProcessing:
		return branchOutcome{
			message:         fmt.Sprintf("Order #%s (%s) hasn't shipped yet, so we can still update the delivery address. I'll create a support ticket for our team to make the change. Would you like me to do that?", order.OrderID, order.Items),
			responseType:    models.ResponseTypeEscalation,
			needsEscalation: true,
			nextState:       State{Kind: StateAwaitingAddressChangeConfirmation, PendingOrderNumber: order.OrderID},
		}
	case models.OrderStatusShipped:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s has already shipped, so the delivery address can't be changed.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusDelivered:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s has already been delivered, so the address can't be changed.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	case models.OrderStatusCancelled:
		return branchOutcome{
			message:      fmt.Sprintf("Order #%s was cancelled, so there's no delivery to update.", order.OrderID),
			responseType: models.ResponseTypeDatabase,
			nextState:    State{Kind: StateIdle},
		}
	}
	return branchOutcome{
		message:      fmt.Sprintf("Order #%s status: %s.", order.OrderID, order.Status),
		responseType: models.ResponseTypeDatabase,
		nextState:    State{Kind: StateIdle},
	}
}
