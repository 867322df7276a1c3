package routes

import (
	"github.com/go-chi/chi/v5"

	"synthron-ledger/walletserver/controllers"
	"synthron-ledger/walletserver/middleware"
)

// Register wires the wallet-sync read surface onto r.
func Register(r chi.Router, wc *controllers.WalletController) {
	r.Use(middleware.Logger)
	r.Get("/api/sync/ciphertexts", wc.ScanCiphertexts)
	r.Get("/api/sync/commitments", wc.ScanCommitments)
	r.Get("/api/sync/nullifiers", wc.NullifierStatus)
	r.Get("/api/sync/anchors", wc.Anchors)
	r.Get("/api/sync/balance/{assetID}", wc.PoolBalance)
	r.Get("/api/sync/auth-path/{index}", wc.AuthenticationPath)
	r.Get("/api/sync/block/{height}", wc.Block)
}
