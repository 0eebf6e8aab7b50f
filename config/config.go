package config

import (
	"fmt"
	"log"
	"os"
	"pharmawaste/models"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
}

type TwilioConfig struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"-"`
	FromNumber string `json:"from_number"`
}

type BlandConfig struct {
	APIKey      string `json:"-"`
	FromNumber  string `json:"from_number"`
	TransferTo  string `json:"transfer_to"`
	MaxDuration int    `json:"max_duration"`
}

type Config struct {
	Environment     string       `json:"environment"`
	ServerPort      string       `json:"server_port"`
	BaseURL         string       `json:"base_url"`
	DBHost          string       `json:"db_host"`
	DBPort          string       `json:"db_port"`
	DBUser          string       `json:"db_user"`
	DBPassword      string       `json:"-"`
	DBName          string       `json:"db_name"`
	DBSSLMode       string       `json:"db_ssl_mode"`
	DBMaxIdleConns  int          `json:"db_max_idle_conns"`
	DBMaxOpenConns  int          `json:"db_max_open_conns"`
	CronSecret      string       `json:"-"`
	AdminEmail      string       `json:"admin_email"`
	SpecialistPhone string       `json:"specialist_phone"`
	EnableWorker    bool         `json:"enable_worker"`
	SentryDSN       string       `json:"-"`
	Redis           RedisConfig  `json:"redis"`
	SMTP            SMTPConfig   `json:"smtp"`
	Twilio          TwilioConfig `json:"twilio"`
	Bland           BlandConfig  `json:"bland"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerPort:      getEnv("SERVER_PORT", "5000"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:5000"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "pharmawaste"),
		DBSSLMode:       getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		CronSecret:      getEnv("CRON_SECRET", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		SpecialistPhone: getEnv("SPECIALIST_PHONE", "1-855-DISPOSE-1"),
		EnableWorker:    getEnvAsBool("ENABLE_WORKER", false),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "quotes@pharmawastedisposal.com"),
			FromName: getEnv("SMTP_FROM_NAME", "PharmaWaste Disposal"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		Bland: BlandConfig{
			APIKey:      getEnv("BLAND_API_KEY", ""),
			FromNumber:  getEnv("BLAND_FROM_NUMBER", ""),
			TransferTo:  getEnv("BLAND_TRANSFER_NUMBER", ""),
			MaxDuration: getEnvAsInt("BLAND_MAX_DURATION", 12),
		},
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.CronSecret == "" {
		return fmt.Errorf("CRON_SECRET is required to protect scheduler endpoints")
	}
	if AppConfig.Environment == "production" {
		if AppConfig.SMTP.Host == "" || AppConfig.SMTP.Username == "" {
			return fmt.Errorf("SMTP credentials are required in production")
		}
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// MigrateDB is exported so test fixtures can run the same migration
// against an in-memory database.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.LeadInteraction{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	switch valueStr {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Providers: SMTP(%t), Twilio(%t), Bland(%t)",
		AppConfig.SMTP.Host != "",
		AppConfig.Twilio.AccountSID != "",
		AppConfig.Bland.APIKey != "")
	log.Printf("Worker enabled: %t", AppConfig.EnableWorker)
}
