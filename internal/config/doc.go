// Package config loads application configuration from environment variables.
//
// All settings have sensible defaults except DATABASE_URL and JWT_SECRET,
// which are required. Validation happens once at startup.
package config
