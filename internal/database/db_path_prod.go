//go:build prod

package database

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// GetDefaultDBPath returns the database path for production mode.
// In production, the database is stored in the user's data directory.
func GetDefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get user config dir, using fallback")
		return "echorepo.db"
	}

	appDir := filepath.Join(configDir, "echorepo")

	err = os.MkdirAll(appDir, 0755)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create app config dir, using fallback")
		return "echorepo.db"
	}

	return filepath.Join(appDir, "echorepo.db")
}
