// Package log provides secure logging utilities with data sanitization capabilities.
package log

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
)

// SanitizationMode controls how sensitive data is handled in logs
type SanitizationMode int

const (
	// ProductionMode hashes sensitive data for production use
	ProductionMode SanitizationMode = iota
	// DevelopmentMode shows truncated sensitive data for debugging
	DevelopmentMode
	// DebugMode shows full sensitive data (only for development)
	DebugMode
)

var currentMode = ProductionMode

func init() {
	// Check environment variable to set mode
	if mode := os.Getenv("TODOAPI_LOG_MODE"); mode != "" {
		switch strings.ToLower(mode) {
		case "production":
			currentMode = ProductionMode
		case "development":
			currentMode = DevelopmentMode
		case "debug":
			currentMode = DebugMode
		}
	}
}

// SanitizeLogin sanitizes login names for logging based on the current mode.
// Logins are chosen by users and routinely contain email addresses, so they
// never hit the logs verbatim in production.
func SanitizeLogin(login string) string {
	if login == "" {
		return ""
	}

	switch currentMode {
	case ProductionMode:
		hash := sha256.Sum256([]byte(login))
		return fmt.Sprintf("login_hash:%x", hash[:6])
	case DevelopmentMode:
		if len(login) <= 4 {
			return login
		}
		return login[:2] + "****"
	case DebugMode:
		return login
	default:
		return SanitizeLogin(login)
	}
}

// SanitizeUserID sanitizes internal user ids for logging. UUIDs are opaque
// but still correlate requests to a person, so production hashes them.
func SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}

	switch currentMode {
	case ProductionMode:
		hash := sha256.Sum256([]byte(userID))
		return fmt.Sprintf("user_hash:%x", hash[:6])
	case DevelopmentMode:
		if len(userID) <= 8 {
			return userID
		}
		return userID[:8] + "****"
	case DebugMode:
		return userID
	default:
		return SanitizeUserID(userID)
	}
}
