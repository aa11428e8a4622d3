package ingest

import (
	"context"
	"regexp"
	"strings"
	"time"

	"campus-popcorn-api/models"
	"campus-popcorn-api/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// The ingest gate only accepts the MTN MoMo received-money format. Anything
// else is acknowledged and dropped.
var acceptPattern = regexp.MustCompile(
	`^\*161\*TxId:\d+\*R\*You have received [\d,]+ RWF from [A-Za-z ]+ \([*\d]+\) on your mobile money account at \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.`)

var (
	txidPattern      = regexp.MustCompile(`TxId[:\s]*(\d+)`)
	amountPattern    = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*|\d+)\s*RWF`)
	senderPattern    = regexp.MustCompile(`from ([A-Za-z ]+) \(`)
	phonePattern     = regexp.MustCompile(`\(([*\d]+)\)`)
	timestampPattern = regexp.MustCompile(`at (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
)

// Fields holds what could be extracted from a raw SMS.
type Fields struct {
	TxID       string
	Amount     string
	SenderName string
	Phone      string
	ReceivedAt time.Time
}

// Accepts reports whether the raw message matches the supported SMS format.
func Accepts(raw string) bool {
	return acceptPattern.MatchString(raw)
}

// Extract pulls the payment fields out of a raw SMS body. Missing fields stay
// zero-valued; ReceivedAt falls back to now when the SMS timestamp is absent
// or malformed.
func Extract(raw string, now time.Time) Fields {
	f := Fields{ReceivedAt: now}
	if m := txidPattern.FindStringSubmatch(raw); m != nil {
		f.TxID = m[1]
	}
	if m := amountPattern.FindStringSubmatch(raw); m != nil {
		f.Amount = strings.TrimSpace(m[0])
	}
	if m := senderPattern.FindStringSubmatch(raw); m != nil {
		f.SenderName = strings.TrimSpace(m[1])
	}
	if m := phonePattern.FindStringSubmatch(raw); m != nil {
		f.Phone = m[1]
	}
	if m := timestampPattern.FindStringSubmatch(raw); m != nil {
		if ts, err := time.ParseInLocation("2006-01-02 15:04:05", m[1], now.Location()); err == nil {
			f.ReceivedAt = ts
		}
	}
	return f
}

// Service turns accepted SMS bodies into immutable PaymentMessage rows.
type Service struct {
	messages *store.MessageRepo
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(messages *store.MessageRepo, log zerolog.Logger) *Service {
	return &Service{messages: messages, log: log, now: time.Now}
}

// Ingest stores the message if it matches the supported format. The bool
// result reports whether the message was saved.
func (s *Service) Ingest(ctx context.Context, raw string) (*models.PaymentMessage, bool, error) {
	if !Accepts(raw) {
		s.log.Debug().Msg("sms ignored: unsupported format")
		return nil, false, nil
	}
	f := Extract(raw, s.now())
	msg := &models.PaymentMessage{
		ID:          uuid.NewString(),
		TxID:        f.TxID,
		PayerName:   f.SenderName,
		PhoneNumber: f.Phone,
		Amount:      f.Amount,
		RawText:     raw,
		ReceivedAt:  f.ReceivedAt,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, false, err
	}
	s.log.Info().Str("txid", msg.TxID).Str("payer", msg.PayerName).Msg("sms ingested")
	return msg, true, nil
}
