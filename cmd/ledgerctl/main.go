package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	core "synthron-ledger/core"
)

func main() {
	rootCmd := &cobra.Command{Use: "ledgerctl"}
	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(walletCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openLedgerFromFlags(cmd *cobra.Command) (*core.Ledger, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data/ledger"
	}
	return core.OpenLedger(dataDir)
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ledger"}
	cmd.PersistentFlags().String("data-dir", "data/ledger", "ledger data directory")

	status := &cobra.Command{
		Use:   "status",
		Short: "print the current height, root and pool balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedgerFromFlags(cmd)
			if err != nil {
				return err
			}
			defer led.Close()
			root := led.Root().Bytes()
			fmt.Printf("height: %d\nroot: %s\npool balance (asset %d): %s\n",
				led.LastHeight(), hex.EncodeToString(root[:]), core.NativeAssetID, led.PoolBalance(core.NativeAssetID).String())
			return nil
		},
	}

	mineCoinbase := &cobra.Command{
		Use:   "mine-coinbase [recipient-hex]",
		Short: "apply a block containing only the next scheduled coinbase inherent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedgerFromFlags(cmd)
			if err != nil {
				return err
			}
			defer led.Close()

			addrBytes, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("decode recipient address: %w", err)
			}
			addr, err := core.ParseShieldedAddress(addrBytes)
			if err != nil {
				return fmt.Errorf("parse recipient address: %w", err)
			}

			height := uint64(0)
			if _, err := led.GetBlock(0); err == nil {
				height = led.LastHeight() + 1
			}
			var seed [32]byte
			copy(seed[:], led.Root().Bytes()[:])

			cb, err := core.BuildCoinbase(addr, height, seed)
			if err != nil {
				return fmt.Errorf("build coinbase: %w", err)
			}
			blk := &core.Block{
				Header:   core.BlockHeader{Height: height, Version: core.ProtocolVersion},
				Coinbase: cb,
			}
			if err := led.ApplyBlock(context.Background(), blk); err != nil {
				return fmt.Errorf("apply block: %w", err)
			}
			fmt.Printf("applied coinbase block at height %d, reward %d\n", height, cb.Amount)
			return nil
		},
	}

	cmd.AddCommand(status, mineCoinbase)
	return cmd
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "wallet"}
	cmd.PersistentFlags().String("data-dir", "data/ledger", "ledger data directory")

	scan := &cobra.Command{
		Use:   "scan [from-index] [page-size]",
		Short: "scan the ciphertext log for wallet-side trial decryption",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedgerFromFlags(cmd)
			if err != nil {
				return err
			}
			defer led.Close()
			view := core.NewWalletView(led)

			var from, pageSize uint64
			if len(args) > 0 {
				fmt.Sscanf(args[0], "%d", &from)
			}
			if len(args) > 1 {
				fmt.Sscanf(args[1], "%d", &pageSize)
			}
			page, err := view.ScanCiphertexts(from, pageSize)
			if err != nil {
				return err
			}
			fmt.Printf("scanned [%d, %d), done=%v, %d envelopes\n", page.StartIndex, page.NextIndex, page.Done, len(page.Envelopes))
			return nil
		},
	}

	cmd.AddCommand(scan)
	return cmd
}
