package config

import (
	"os"
	"strconv"
	"strings"

	"campus-popcorn-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret []byte

// Runtime settings loaded from the environment
var (
	DBPath        string
	UnitPrice     int      // RWF per portion
	AdminEmails   []string // comma-separated allowlist, lowercased
	BlobDir       string
	BlobBaseURL   string
	BlobSecret    string
	SMSSecret     string // shared secret for the SMS ingest webhook
	MomoCode      string // fallback when the settings table has no momo_code
	MerchantName  string
)

// Load reads .env (if present) and populates the package configuration.
func Load() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	JWTSecret = []byte(getEnv("JWT_SECRET", "campus_popcorn_super_secret_2024"))
	DBPath = getEnv("DB_PATH", "campus_popcorn.db")
	UnitPrice = getEnvInt("UNIT_PRICE_RWF", 1500)
	BlobDir = getEnv("BLOB_DIR", "data/payment-proofs")
	BlobBaseURL = getEnv("BLOB_BASE_URL", "http://localhost:8080/files")
	BlobSecret = getEnv("BLOB_SIGNING_SECRET", "campus_popcorn_blob_secret")
	SMSSecret = getEnv("SMS_WEBHOOK_SECRET", "")
	MomoCode = getEnv("MOMO_CODE", "*182*81*12345#")
	MerchantName = getEnv("MERCHANT_NAME", "Campus Popcorn Ltd")

	AdminEmails = nil
	for _, e := range strings.Split(getEnv("ADMIN_EMAILS", ""), ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			AdminEmails = append(AdminEmails, e)
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return fallback
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.Order{},
		&models.Payment{},
		&models.PaymentMessage{},
		&models.PaymentStatusHistory{},
		&models.Setting{},
		&models.PushSubscription{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Str("path", DBPath).Msg("database connected and migrated")
}
