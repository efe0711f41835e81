// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Mediateca. They are
// loaded via WAFFLE's config system from files, MEDIATECA_* environment
// variables, or command-line flags.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mediateca", Desc: "MongoDB database name"},

	{Name: "jwt_secret", Default: "dev-only-change-me-0123456789ABCDEF", Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g. 24h, 8h)"},

	// Object storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 'minio'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage directory for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving locally stored files"},
	{Name: "minio_endpoint", Default: "", Desc: "MinIO/S3 endpoint (host:port)"},
	{Name: "minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "minio_bucket", Default: "mediateca", Desc: "MinIO bucket name"},
	{Name: "minio_use_ssl", Default: false, Desc: "Use TLS for MinIO connections"},

	// Email/SMTP
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@mediateca.local", Desc: "From email address"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for email links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEDIATECA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		MinIOEndpoint:    appValues.String("minio_endpoint"),
		MinIOAccessKey:   appValues.String("minio_access_key"),
		MinIOSecretKey:   appValues.String("minio_secret_key"),
		MinIOBucket:      appValues.String("minio_bucket"),
		MinIOUseSSL:      appValues.Bool("minio_use_ssl"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig enforces the config invariants that involve both core
// and app settings before any backends are built.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
	case "minio":
		if appCfg.MinIOEndpoint == "" || appCfg.MinIOAccessKey == "" || appCfg.MinIOSecretKey == "" {
			return fmt.Errorf("storage_type 'minio' requires minio_endpoint, minio_access_key and minio_secret_key")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 'minio')", appCfg.StorageType)
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be set in production")
	}
	return nil
}
