package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
)

func TestDefaultTransitionsArePermissive(t *testing.T) {
	table := DefaultTransitions()

	assert.True(t, table.Allows(enums.OrderStatusCancelled, enums.OrderStatusPending), "cancelled orders can be reopened")
	assert.True(t, table.Allows(enums.OrderStatusDelivered, enums.OrderStatusShipped))
	assert.False(t, table.Allows(enums.OrderStatusPending, enums.OrderStatusPending), "self transitions excluded")
}

func TestStrictTransitions(t *testing.T) {
	table := StrictTransitions()

	assert.True(t, table.Allows(enums.OrderStatusPending, enums.OrderStatusProcessing))
	assert.True(t, table.Allows(enums.OrderStatusProcessing, enums.OrderStatusCancelled))
	assert.True(t, table.Allows(enums.OrderStatusShipped, enums.OrderStatusDelivered))

	assert.False(t, table.Allows(enums.OrderStatusShipped, enums.OrderStatusCancelled), "no cancellation after shipping")
	assert.False(t, table.Allows(enums.OrderStatusDelivered, enums.OrderStatusPending))
	assert.False(t, table.Allows(enums.OrderStatusCancelled, enums.OrderStatusPending))
}
