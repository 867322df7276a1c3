package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ServerConfig configures the wallet HTTP server and the ledger data
// directory it opens read-only access to.
type ServerConfig struct {
	Port    string
	DataDir string
}

var AppConfig ServerConfig

func Load() error {
	if err := godotenv.Load("walletserver/.env"); err != nil {
		return fmt.Errorf("loading env: %w", err)
	}
	port := os.Getenv("WALLET_PORT")
	if port == "" {
		port = "8081"
	}
	dataDir := os.Getenv("WALLET_LEDGER_DIR")
	if dataDir == "" {
		dataDir = "data/ledger"
	}
	AppConfig = ServerConfig{Port: port, DataDir: dataDir}
	return nil
}
