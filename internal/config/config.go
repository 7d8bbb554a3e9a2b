package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds the server's environment-driven settings.
type Config struct {
	// SaveDir is where evicted blob bodies are written. Defaults to the
	// OS temp directory when SERVER_SAVE_DIR is unset.
	SaveDir string

	// ListenAddr is the server's HTTP bind address.
	ListenAddr string

	// TreeDepth is the Merkle tree's fixed depth D (256 slots at the
	// default of 8).
	TreeDepth int

	// RequireAuth turns on the optional requireSession middleware.
	RequireAuth bool
}

// Load reads configuration from the environment using viper, applying
// defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("SERVER_SAVE_DIR", os.TempDir())
	v.SetDefault("COLDVAULT_LISTEN_ADDR", ":8000")
	v.SetDefault("COLDVAULT_TREE_DEPTH", 8)
	v.SetDefault("COLDVAULT_REQUIRE_AUTH", false)

	return &Config{
		SaveDir:     v.GetString("SERVER_SAVE_DIR"),
		ListenAddr:  v.GetString("COLDVAULT_LISTEN_ADDR"),
		TreeDepth:   v.GetInt("COLDVAULT_TREE_DEPTH"),
		RequireAuth: v.GetBool("COLDVAULT_REQUIRE_AUTH"),
	}, nil
}
