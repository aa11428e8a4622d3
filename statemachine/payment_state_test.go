package statemachine

import (
	"testing"

	"campus-popcorn-api/models"

	"github.com/stretchr/testify/assert"
)

func TestPaymentTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.PaymentStatus
		to      models.PaymentStatus
		actor   string
		allowed bool
	}{
		{"operator marks paid", models.PaymentPending, models.PaymentPaid, ActorOperator, true},
		{"operator marks unpaid", models.PaymentPending, models.PaymentUnpaid, ActorOperator, true},
		{"operator marks incomplete", models.PaymentPaid, models.PaymentIncomplete, ActorOperator, true},
		{"operator reverts to pending", models.PaymentUnpaid, models.PaymentPending, ActorOperator, true},
		{"operator overrides a confirmed settlement", models.PaymentConfirmed, models.PaymentPaid, ActorOperator, true},
		{"system settles pending", models.PaymentPending, models.PaymentConfirmed, ActorSystem, true},

		{"operator cannot write confirmed", models.PaymentPending, models.PaymentConfirmed, ActorOperator, false},
		{"system cannot settle paid", models.PaymentPaid, models.PaymentConfirmed, ActorSystem, false},
		{"system cannot settle twice", models.PaymentConfirmed, models.PaymentConfirmed, ActorSystem, false},
		{"customer has no payment edges", models.PaymentPending, models.PaymentPaid, ActorCustomer, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransitionPayment(tc.from, tc.to, tc.actor)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestManualPaymentStatusVocabulary(t *testing.T) {
	for _, s := range []models.PaymentStatus{
		models.PaymentPending, models.PaymentPaid, models.PaymentUnpaid, models.PaymentIncomplete,
	} {
		assert.True(t, IsManualPaymentStatus(s), string(s))
	}
	assert.False(t, IsManualPaymentStatus(models.PaymentConfirmed))
	assert.False(t, IsManualPaymentStatus(models.PaymentStatus("settled")))
}
