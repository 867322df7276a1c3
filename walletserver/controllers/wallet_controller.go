package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"synthron-ledger/walletserver/services"
)

// WalletController provides the HTTP handlers backing wallet sync: scanning
// the ciphertext log, checking nullifier status, fetching the anchor window
// and reading pool balances. No private key material ever crosses this
// boundary; decryption happens entirely on the wallet side.
type WalletController struct {
	svc *services.WalletService
}

func NewWalletController(svc *services.WalletService) *WalletController {
	return &WalletController{svc: svc}
}

func (wc *WalletController) ScanCiphertexts(w http.ResponseWriter, r *http.Request) {
	from, _ := strconv.ParseUint(r.URL.Query().Get("from"), 10, 64)
	pageSize, _ := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64)
	page, err := wc.svc.ScanCiphertexts(from, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, page)
}

func (wc *WalletController) ScanCommitments(w http.ResponseWriter, r *http.Request) {
	from, _ := strconv.ParseUint(r.URL.Query().Get("from"), 10, 64)
	pageSize, _ := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64)
	startIndex, commitments, nextIndex, done, err := wc.svc.ScanCommitments(from, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"start_index": startIndex,
		"commitments": commitments,
		"next_index":  nextIndex,
		"done":        done,
	})
}

func (wc *WalletController) NullifierStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("n")
	var hexNullifiers []string
	if raw != "" {
		hexNullifiers = strings.Split(raw, ",")
	}
	status, err := wc.svc.NullifierStatus(hexNullifiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"spent": status})
}

func (wc *WalletController) Anchors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"root":   wc.svc.CurrentRoot(),
		"window": wc.svc.AnchorWindow(),
		"height": wc.svc.LatestHeight(),
	})
}

func (wc *WalletController) PoolBalance(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.ParseUint(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"balance": wc.svc.PoolBalance(assetID)})
}

func (wc *WalletController) AuthenticationPath(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		http.Error(w, "invalid leaf index", http.StatusBadRequest)
		return
	}
	path, err := wc.svc.AuthenticationPath(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"path": path})
}

func (wc *WalletController) Block(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(chi.URLParam(r, "height"), 10, 64)
	if err != nil {
		http.Error(w, "invalid height", http.StatusBadRequest)
		return
	}
	blk, err := wc.svc.Block(height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, blk)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
