package config

import "fmt"

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the fields the server cannot run without.
func ValidateConfig(cfg *Config) error {
	if cfg.DBUser == "" {
		return ValidationError{Field: "DB_USER", Message: "required"}
	}
	if cfg.DBPassword == "" {
		return ValidationError{Field: "DB_PASSWORD", Message: "required"}
	}
	if cfg.JWTSecret == "" {
		return ValidationError{Field: "JWT_SECRET", Message: "required"}
	}
	if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
		return ValidationError{Field: "AWS_REGION", Message: "required when S3_BUCKET_NAME is set"}
	}
	return nil
}
