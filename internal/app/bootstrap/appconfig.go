// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig carries everything specific to this service:
// database, token signing, object storage, and mail.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Bearer token signing
	JWTSecret string
	JWTTTL    time.Duration

	// Object storage backend: "local" or "minio"
	StorageType      string
	StorageLocalPath string // local storage directory
	StorageLocalURL  string // public URL prefix for locally stored files

	// MinIO / S3-compatible storage (used when StorageType is "minio")
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	// Base URL for email links (verification, password reset)
	BaseURL string
}
