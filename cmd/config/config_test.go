package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"synthron-ledger/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir("../.."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Ledger.DataDir != "data/ledger/pebble" {
		t.Fatalf("unexpected ledger data dir: %s", AppConfig.Ledger.DataDir)
	}
	if AppConfig.Wallet.Port != "8081" {
		t.Fatalf("unexpected wallet port: %s", AppConfig.Wallet.Port)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir("../.."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Ledger.PruneInterval != 5000 {
		t.Fatalf("expected PruneInterval 5000, got %d", AppConfig.Ledger.PruneInterval)
	}
	if AppConfig.Wallet.Port != "9081" {
		t.Fatalf("expected overridden wallet port 9081, got %s", AppConfig.Wallet.Port)
	}
	if AppConfig.Logging.Level != "debug" {
		t.Fatalf("expected overridden logging level debug, got %s", AppConfig.Logging.Level)
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("ledger:\n  data_dir: sandbox/pebble\n  prune_interval: 42\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Ledger.DataDir != "sandbox/pebble" {
		t.Fatalf("expected ledger data dir sandbox/pebble, got %s", AppConfig.Ledger.DataDir)
	}
	if AppConfig.Ledger.PruneInterval != 42 {
		t.Fatalf("expected PruneInterval 42, got %d", AppConfig.Ledger.PruneInterval)
	}
}
