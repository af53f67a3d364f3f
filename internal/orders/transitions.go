package orders

import "github.com/tradesphere/tradesphere-backend/pkg/enums"

// TransitionTable defines which fulfillment moves are allowed. The zero-config
// default is deliberately permissive: vendors can move an order between any
// two distinct statuses, including reopening a cancelled order. Deployments
// wanting a strict forward-only pipeline swap in StrictTransitions.
type TransitionTable map[enums.OrderStatus][]enums.OrderStatus

// DefaultTransitions allows any move between distinct valid statuses.
func DefaultTransitions() TransitionTable {
	all := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	}

	table := make(TransitionTable, len(all))
	for _, from := range all {
		for _, to := range all {
			if from == to {
				continue
			}
			table[from] = append(table[from], to)
		}
	}
	return table
}

// StrictTransitions enforces the forward-only pipeline with cancellation
// allowed before shipping.
func StrictTransitions() TransitionTable {
	return TransitionTable{
		enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
		enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
		enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
	}
}

// Allows reports whether moving from one status to another is permitted.
func (t TransitionTable) Allows(from, to enums.OrderStatus) bool {
	for _, candidate := range t[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
