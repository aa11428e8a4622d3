package statemachine

import (
	"errors"

	"campus-popcorn-api/models"
)

// PaymentTransition defines a valid payment-status change and who performs it
type PaymentTransition struct {
	From  models.PaymentStatus
	To    models.PaymentStatus
	Actor string
}

// ManualPaymentStatuses is the admin override vocabulary. The override is
// unconditional: any status, including a system-written "confirmed", may be
// rewritten to any manual status.
var ManualPaymentStatuses = []models.PaymentStatus{
	models.PaymentPending,
	models.PaymentPaid,
	models.PaymentUnpaid,
	models.PaymentIncomplete,
}

var validPaymentTransitions = func() []PaymentTransition {
	froms := append([]models.PaymentStatus{models.PaymentConfirmed}, ManualPaymentStatuses...)
	var ts []PaymentTransition
	for _, from := range froms {
		for _, to := range ManualPaymentStatuses {
			if from == to {
				continue
			}
			ts = append(ts, PaymentTransition{From: from, To: to, Actor: ActorOperator})
		}
	}
	// The only automatic edge: the SMS matcher settles a pending payment
	ts = append(ts, PaymentTransition{From: models.PaymentPending, To: models.PaymentConfirmed, Actor: ActorSystem})
	return ts
}()

type paymentTransitionKey struct {
	From  models.PaymentStatus
	To    models.PaymentStatus
	Actor string
}

var paymentTransitionMap = func() map[paymentTransitionKey]bool {
	m := make(map[paymentTransitionKey]bool)
	for _, t := range validPaymentTransitions {
		m[paymentTransitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsManualPaymentStatus reports whether a status is part of the override enum
func IsManualPaymentStatus(s models.PaymentStatus) bool {
	for _, m := range ManualPaymentStatuses {
		if s == m {
			return true
		}
	}
	return false
}

// CanTransitionPayment checks if a given actor can change payment status
func CanTransitionPayment(from, to models.PaymentStatus, actor string) error {
	if paymentTransitionMap[paymentTransitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid payment transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'",
	)
}

// AllPaymentTransitions returns the full payment state machine for documentation
func AllPaymentTransitions() []PaymentTransition {
	return validPaymentTransitions
}
