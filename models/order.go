package models

import "time"

// OrderStatus represents the delivery lifecycle of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents the settlement state of an order, tracked
// independently from the delivery lifecycle
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentPaid       PaymentStatus = "paid"
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentIncomplete PaymentStatus = "incomplete"
	// PaymentConfirmed is written only by the automatic SMS matcher; the
	// admin override vocabulary is the four statuses above.
	PaymentConfirmed PaymentStatus = "confirmed"
)

type Order struct {
	ID                     string        `json:"id" gorm:"primaryKey"`
	UserID                 *string       `json:"user_id" gorm:"index"`
	Email                  *string       `json:"email"`
	Portions               int           `json:"portions" gorm:"not null"`
	Location               string        `json:"location" gorm:"not null"`
	TotalPrice             int           `json:"total_price" gorm:"not null"` // RWF, fixed at creation
	Status                 OrderStatus   `json:"status" gorm:"not null;default:'pending'"`
	PaymentStatus          PaymentStatus `json:"payment_status" gorm:"not null;default:'pending'"`
	CustomerName           *string       `json:"customer_name"`
	PaymentProofURL        *string       `json:"payment_proof_url"`
	PaymentProofPath       *string       `json:"payment_proof_path"`
	PaymentProofUploadedAt *time.Time    `json:"payment_proof_uploaded_at"`
	Payments               []Payment     `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// PaymentMessage is an ingested mobile-money SMS. Rows are immutable once
// written; the matcher only ever reads them.
type PaymentMessage struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	TxID        string    `json:"txid" gorm:"index;not null"`
	PayerName   string    `json:"payer_name"`
	PhoneNumber string    `json:"phone_number"`
	Amount      string    `json:"amount"` // as extracted from the SMS, e.g. "7,000 RWF"
	RawText     string    `json:"raw_text"`
	ReceivedAt  time.Time `json:"received_at" gorm:"index"`
}

// Payment records a successful automatic verification against an SMS message
type Payment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OrderID     string    `json:"order_id" gorm:"index;not null"`
	MessageID   string    `json:"message_id" gorm:"not null"`
	TxID        string    `json:"txid" gorm:"not null"`
	AccountName string    `json:"account_name"`
	PhoneNumber string    `json:"phone_number"`
	Amount      int       `json:"amount"`
	VerifiedAt  time.Time `json:"verified_at"`
}

// PaymentStatusHistory tracks every settlement and override — audit trail
type PaymentStatusHistory struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	OrderID         string        `json:"order_id" gorm:"index;not null"`
	FromStatus      PaymentStatus `json:"from_status"`
	ToStatus        PaymentStatus `json:"to_status" gorm:"not null"`
	FromOrderStatus OrderStatus   `json:"from_order_status"`
	ToOrderStatus   OrderStatus   `json:"to_order_status"`
	Actor           string        `json:"actor"` // "customer", "operator", "system"
	Note            string        `json:"note"`
	CreatedAt       time.Time     `json:"created_at"`
}
