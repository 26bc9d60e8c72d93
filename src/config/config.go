package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	DatabasePath       string
	LogLevel           string
	MaxUploadSizeBytes int64

	// CSVDialect selects the default CSV flavour: "localized" for the
	// semicolon-delimited, comma-decimal commission exports, "standard"
	// for comma-delimited, dot-decimal files.
	CSVDialect string

	// ActiveQuotaStatus is the sentinel marking a quota as active. Older
	// statement eras use "A", newer ones "Ativa".
	ActiveQuotaStatus string

	// ConsortiumMarkup is the uniform multiplier applied to per-salesperson
	// totals in the consortium report. The 20% figure comes straight from
	// the business side and is undocumented; keep it configurable.
	ConsortiumMarkup float64

	// ExtendedSchema enables the due_date/payment_date columns used by the
	// delinquency reports. Statements without installment data should leave
	// this off.
	ExtendedSchema bool
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found, relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./comissio.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		CSVDialect:         getEnv("CSV_DIALECT", "localized"),
		ActiveQuotaStatus:  getEnv("ACTIVE_QUOTA_STATUS", "A"),
		ConsortiumMarkup:   getEnvAsFloat("CONSORTIUM_MARKUP", 1.2),
		ExtendedSchema:     getEnvAsBool("EXTENDED_SCHEMA", false),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Dialect=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.CSVDialect)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}
