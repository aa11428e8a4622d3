package settlement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"campus-popcorn-api/blob"
	"campus-popcorn-api/models"
	"campus-popcorn-api/notify"
	"campus-popcorn-api/statemachine"
	"campus-popcorn-api/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// MaxProofSize caps uploaded payment proofs at 10 MiB
	MaxProofSize = 10 * 1024 * 1024

	maxPortions = 10
	minPortions = 1
)

// allowedProofTypes is the proof-upload MIME allowlist
var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Service owns the order ledger, both evidence-intake paths, and the
// settlement matcher. All collaborators are injected.
type Service struct {
	store     *store.Store
	blobs     blob.Store
	notifier  notify.Notifier
	log       zerolog.Logger
	unitPrice int // RWF per portion, fallback when settings carry no override
	now       func() time.Time
}

func New(st *store.Store, blobs blob.Store, notifier notify.Notifier, log zerolog.Logger, unitPrice int) *Service {
	return &Service{
		store:     st,
		blobs:     blobs,
		notifier:  notifier,
		log:       log,
		unitPrice: unitPrice,
		now:       time.Now,
	}
}

// UnitPrice returns the current per-portion price, preferring the settings
// table so operators can reprice without a redeploy.
func (s *Service) UnitPrice(ctx context.Context) int {
	if v, err := s.store.Settings.Get(ctx, "unit_price"); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return s.unitPrice
}

type CreateOrderInput struct {
	Portions int
	Location string
	UserID   *string
	Email    *string
}

// CreateOrder validates portions and location, fixes the total price, and
// stores a fresh pending order.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.Portions < minPortions || in.Portions > maxPortions {
		return nil, fmt.Errorf("%w: portions must be between %d and %d", ErrInvalidInput, minPortions, maxPortions)
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Email:         in.Email,
		Portions:      in.Portions,
		Location:      location,
		TotalPrice:    in.Portions * s.UnitPrice(ctx),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}
	if err := s.store.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.log.Info().Str("order_id", order.ID).Int("portions", order.Portions).
		Int("total", order.TotalPrice).Msg("order created")
	return order, nil
}

// GetOrder reads a single order with its payments.
func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return order, nil
}

// OrderPatch carries a partial update; nil fields are left untouched.
type OrderPatch struct {
	Location     *string
	CustomerName *string
	Email        *string
}

// UpdateOrder applies a partial update, last write wins.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (*models.Order, error) {
	fields := map[string]any{}
	if patch.Location != nil {
		if strings.TrimSpace(*patch.Location) == "" {
			return nil, fmt.Errorf("%w: location cannot be empty", ErrInvalidInput)
		}
		fields["location"] = strings.TrimSpace(*patch.Location)
	}
	if patch.CustomerName != nil {
		fields["customer_name"] = *patch.CustomerName
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if len(fields) == 0 {
		return s.GetOrder(ctx, id)
	}
	if err := s.store.Orders.Update(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return s.GetOrder(ctx, id)
}

// ProofUpload is the uploaded evidence document.
type ProofUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AttachProof stores a payment-proof document against an order. The proof
// path never auto-confirms: the order goes back to pending in both lifecycles
// and waits for operator review. No Payment row is created here.
func (s *Service) AttachProof(ctx context.Context, orderID string, upload ProofUpload, customerName string) (*models.Order, error) {
	if !allowedProofTypes[strings.ToLower(upload.ContentType)] {
		return nil, fmt.Errorf("%w: upload a JPEG, PNG, WebP image or a PDF", ErrInvalidEvidence)
	}
	if len(upload.Data) > MaxProofSize {
		return nil, fmt.Errorf("%w: file size must be less than 10MB", ErrInvalidEvidence)
	}
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owner := "anonymous"
	if order.UserID != nil && *order.UserID != "" {
		owner = *order.UserID
	}
	uploadedAt := s.now()
	path := fmt.Sprintf("%s/%s_%d.%s", owner, order.ID, uploadedAt.UnixMilli(), proofExt(upload.FileName))

	url, err := s.blobs.Put(ctx, path, upload.Data, upload.ContentType)
	if err != nil {
		// The order is untouched so the customer may simply retry.
		return nil, fmt.Errorf("%w: failed to upload payment proof: %v", ErrStorage, err)
	}

	prevPayment, prevStatus := order.PaymentStatus, order.Status
	err = s.store.Orders.Update(ctx, order.ID, map[string]any{
		"payment_proof_url":         url,
		"payment_proof_path":        path,
		"payment_proof_uploaded_at": uploadedAt,
		"customer_name":             customerName,
		"payment_status":            models.PaymentPending,
		"status":                    models.OrderPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.addHistory(ctx, order.ID, prevPayment, models.PaymentPending, prevStatus, models.OrderPending,
		statemachine.ActorCustomer, "payment proof uploaded, awaiting review")

	s.notifyBestEffort(ctx, order.UserID, notify.Notification{
		Title: "Payment proof received",
		Body:  "We got your payment proof and will review it shortly.",
		Tag:   "order-" + order.ID,
		Data:  map[string]any{"order_id": order.ID},
	})

	return s.GetOrder(ctx, order.ID)
}

// VerifyResult is the outcome of the SMS-match path.
type VerifyResult struct {
	Matched bool            `json:"matched"`
	Order   *models.Order   `json:"order,omitempty"`
	Payment *models.Payment `json:"payment,omitempty"`
}

// VerifyBySms matches operator-entered details against ingested SMS records:
// exact txid, case-insensitive payer-name substring, and phone last-4 suffix.
// When several rows qualify the most recently received wins. A match settles
// the order atomically — order update and payment insert commit together or
// not at all.
func (s *Service) VerifyBySms(ctx context.Context, orderID, txid, accountName, phoneNumber string) (*VerifyResult, error) {
	txid = strings.TrimSpace(txid)
	accountName = strings.TrimSpace(accountName)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if txid == "" || accountName == "" || phoneNumber == "" {
		return nil, fmt.Errorf("%w: transaction id, account name and phone number are required", ErrInvalidInput)
	}
	suffix := phoneSuffix(phoneNumber)
	if suffix == "" {
		return nil, fmt.Errorf("%w: phone number must contain at least 4 digits", ErrInvalidInput)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The SMS matcher is the only path to "confirmed"; it must start from a
	// pending order in both lifecycles.
	if err := statemachine.CanTransitionOrder(order.Status, models.OrderConfirmed, statemachine.ActorSystem); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err := statemachine.CanTransitionPayment(order.PaymentStatus, models.PaymentConfirmed, statemachine.ActorSystem); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	candidates, err := s.store.Messages.Match(ctx, txid, accountName, suffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if len(candidates) == 0 {
		return nil, ErrVerificationFailed
	}
	msg := candidates[0]

	payment := &models.Payment{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		MessageID:   msg.ID,
		TxID:        msg.TxID,
		AccountName: accountName,
		PhoneNumber: phoneNumber,
		Amount:      order.TotalPrice,
		VerifiedAt:  s.now(),
	}

	prevPayment, prevStatus := order.PaymentStatus, order.Status
	err = s.store.WithTx(func(tx *store.Store) error {
		if err := tx.Orders.Update(ctx, order.ID, map[string]any{
			"status":         models.OrderConfirmed,
			"payment_status": models.PaymentConfirmed,
		}); err != nil {
			return err
		}
		if err := tx.Payments.Insert(ctx, payment); err != nil {
			return err
		}
		return tx.Orders.AddHistory(ctx, &models.PaymentStatusHistory{
			OrderID:         order.ID,
			FromStatus:      prevPayment,
			ToStatus:        models.PaymentConfirmed,
			FromOrderStatus: prevStatus,
			ToOrderStatus:   models.OrderConfirmed,
			Actor:           statemachine.ActorSystem,
			Note:            "verified against SMS " + msg.TxID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: settlement failed: %v", ErrStorage, err)
	}

	s.log.Info().Str("order_id", order.ID).Str("txid", msg.TxID).
		Str("message_id", msg.ID).Msg("order settled by sms match")

	s.notifyBestEffort(ctx, order.UserID, notify.Notification{
		Title: "Order confirmed!",
		Body:  "Your payment was verified and your order is confirmed.",
		Tag:   "order-" + order.ID,
		Data:  map[string]any{"order_id": order.ID, "txid": msg.TxID},
	})

	updated, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Matched: true, Order: updated, Payment: payment}, nil
}

// SetPaymentStatus is the operator's manual override: it writes any of the
// manual payment statuses unconditionally and never touches the delivery
// lifecycle.
func (s *Service) SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus, note string) (*models.Order, error) {
	if !statemachine.IsManualPaymentStatus(status) {
		return nil, fmt.Errorf("%w: payment status must be one of pending, paid, unpaid, incomplete", ErrInvalidInput)
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Orders.Update(ctx, order.ID, map[string]any{"payment_status": status}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.addHistory(ctx, order.ID, order.PaymentStatus, status, order.Status, order.Status,
		statemachine.ActorOperator, note)
	return s.GetOrder(ctx, order.ID)
}

// SetOrderStatus advances the delivery lifecycle through the state machine.
func (s *Service) SetOrderStatus(ctx context.Context, orderID string, to models.OrderStatus, actor, note string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransitionOrder(order.Status, to, actor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err := s.store.Orders.Update(ctx, order.ID, map[string]any{"status": to}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.addHistory(ctx, order.ID, order.PaymentStatus, order.PaymentStatus, order.Status, to, actor, note)
	return s.GetOrder(ctx, order.ID)
}

// ForceOrderStatus bypasses the state machine — emergency admin use only.
func (s *Service) ForceOrderStatus(ctx context.Context, orderID string, to models.OrderStatus, note string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Orders.Update(ctx, order.ID, map[string]any{"status": to}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.addHistory(ctx, order.ID, order.PaymentStatus, order.PaymentStatus, order.Status, to,
		statemachine.ActorOperator, "[ADMIN OVERRIDE] "+note)
	return s.GetOrder(ctx, order.ID)
}

// RemoveProof deletes the stored proof document and clears the order's proof
// fields — operator cleanup for rejected evidence.
func (s *Service) RemoveProof(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentProofPath == nil {
		return nil, fmt.Errorf("%w: order has no payment proof", ErrInvalidInput)
	}
	if err := s.blobs.Delete(ctx, *order.PaymentProofPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	err = s.store.Orders.Update(ctx, order.ID, map[string]any{
		"payment_proof_url":         nil,
		"payment_proof_path":        nil,
		"payment_proof_uploaded_at": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return s.GetOrder(ctx, order.ID)
}

// ProofURL issues a short-lived signed URL for operator review of a proof.
func (s *Service) ProofURL(ctx context.Context, orderID string, ttl time.Duration) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentProofPath == nil {
		return "", fmt.Errorf("%w: order has no payment proof", ErrInvalidInput)
	}
	url, err := s.blobs.SignedURL(ctx, *order.PaymentProofPath, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}

func (s *Service) addHistory(ctx context.Context, orderID string, fromPay, toPay models.PaymentStatus, fromOrder, toOrder models.OrderStatus, actor, note string) {
	err := s.store.Orders.AddHistory(ctx, &models.PaymentStatusHistory{
		OrderID:         orderID,
		FromStatus:      fromPay,
		ToStatus:        toPay,
		FromOrderStatus: fromOrder,
		ToOrderStatus:   toOrder,
		Actor:           actor,
		Note:            note,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("history write failed")
	}
}

func (s *Service) notifyBestEffort(ctx context.Context, userID *string, n notify.Notification) {
	if userID == nil {
		return
	}
	if err := s.notifier.Send(ctx, *userID, n); err != nil {
		s.log.Warn().Err(err).Str("user_id", *userID).Msg("notification failed")
	}
}

func proofExt(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// phoneSuffix returns the last 4 digits of a phone number, ignoring
// formatting characters.
func phoneSuffix(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
