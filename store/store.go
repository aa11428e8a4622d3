package store

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store bundles the per-entity repositories over one gorm connection.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger

	Orders   *OrderRepo
	Payments *PaymentRepo
	Messages *MessageRepo
	Settings *SettingsRepo
	Users    *UserRepo
}

func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{
		db:       db,
		log:      log,
		Orders:   &OrderRepo{db: db, log: log},
		Payments: &PaymentRepo{db: db, log: log},
		Messages: &MessageRepo{db: db, log: log},
		Settings: &SettingsRepo{db: db, log: log},
		Users:    &UserRepo{db: db, log: log},
	}
}

// WithTx runs fn against a Store bound to a single transaction. The settlement
// matcher uses this so its order update and payment insert commit or roll back
// together.
func (s *Store) WithTx(fn func(tx *Store) error) error {
	return s.db.Transaction(func(txdb *gorm.DB) error {
		return fn(New(txdb, s.log))
	})
}
