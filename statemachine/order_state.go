package statemachine

import (
	"errors"

	"campus-popcorn-api/models"
)

// Actors that may drive order transitions
const (
	ActorCustomer = "customer"
	ActorOperator = "operator"
	ActorSystem   = "system"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// validOrderTransitions is the authoritative state machine definition
var validOrderTransitions = []Transition{
	// Operator advances the fulfilment lane
	{From: models.OrderPending, To: models.OrderPreparing, Actor: ActorOperator},
	{From: models.OrderPreparing, To: models.OrderReady, Actor: ActorOperator},
	{From: models.OrderReady, To: models.OrderDelivered, Actor: ActorOperator},
	// Only the SMS matcher confirms an order automatically
	{From: models.OrderPending, To: models.OrderConfirmed, Actor: ActorSystem},
	// Confirmed orders rejoin the fulfilment lane
	{From: models.OrderConfirmed, To: models.OrderPreparing, Actor: ActorOperator},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: ActorOperator},
	// Cancellation before delivery
	{From: models.OrderPending, To: models.OrderCancelled, Actor: ActorOperator},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: ActorCustomer},
	{From: models.OrderPreparing, To: models.OrderCancelled, Actor: ActorOperator},
	{From: models.OrderPreparing, To: models.OrderCancelled, Actor: ActorCustomer},
	{From: models.OrderReady, To: models.OrderCancelled, Actor: ActorOperator},
	{From: models.OrderReady, To: models.OrderCancelled, Actor: ActorCustomer},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Build a lookup map for O(1) validation
var orderTransitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validOrderTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidOrderTransitionsFrom returns all valid next states from a given state
func ValidOrderTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validOrderTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionOrder checks if a given actor can move from one state to another
func CanTransitionOrder(from, to models.OrderStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if orderTransitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidOrderTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// AllOrderTransitions returns the full state machine for documentation
func AllOrderTransitions() []Transition {
	return validOrderTransitions
}
