package statemachine

import (
	"testing"

	"campus-popcorn-api/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   string
		allowed bool
	}{
		{"operator starts preparing", models.OrderPending, models.OrderPreparing, ActorOperator, true},
		{"operator marks ready", models.OrderPreparing, models.OrderReady, ActorOperator, true},
		{"operator delivers", models.OrderReady, models.OrderDelivered, ActorOperator, true},
		{"system confirms pending", models.OrderPending, models.OrderConfirmed, ActorSystem, true},
		{"customer cancels pending", models.OrderPending, models.OrderCancelled, ActorCustomer, true},
		{"customer cancels preparing", models.OrderPreparing, models.OrderCancelled, ActorCustomer, true},
		{"confirmed rejoins preparing", models.OrderConfirmed, models.OrderPreparing, ActorOperator, true},

		{"customer cannot confirm", models.OrderPending, models.OrderConfirmed, ActorCustomer, false},
		{"operator cannot confirm", models.OrderPending, models.OrderConfirmed, ActorOperator, false},
		{"system cannot confirm twice", models.OrderConfirmed, models.OrderConfirmed, ActorSystem, false},
		{"no skipping to delivered", models.OrderPending, models.OrderDelivered, ActorOperator, false},
		{"delivered is terminal", models.OrderDelivered, models.OrderCancelled, ActorOperator, false},
		{"cancelled is terminal", models.OrderCancelled, models.OrderPending, ActorOperator, false},
		{"customer cannot cancel delivered", models.OrderDelivered, models.OrderCancelled, ActorCustomer, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransitionOrder(tc.from, tc.to, tc.actor)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidOrderTransitionsFromTerminalStates(t *testing.T) {
	assert.Empty(t, ValidOrderTransitionsFrom(models.OrderDelivered))
	assert.Empty(t, ValidOrderTransitionsFrom(models.OrderCancelled))
}

func TestValidOrderTransitionsFromPending(t *testing.T) {
	nexts := ValidOrderTransitionsFrom(models.OrderPending)
	assert.ElementsMatch(t, []models.OrderStatus{
		models.OrderPreparing,
		models.OrderConfirmed,
		models.OrderCancelled,
	}, nexts)
}
