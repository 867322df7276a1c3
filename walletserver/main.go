package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	core "synthron-ledger/core"
	"synthron-ledger/walletserver/config"
	"synthron-ledger/walletserver/controllers"
	"synthron-ledger/walletserver/routes"
	"synthron-ledger/walletserver/services"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.Fatal(err)
	}

	ledger, err := core.OpenLedger(config.AppConfig.DataDir)
	if err != nil {
		logrus.Fatalf("wallet server: open ledger at %s: %v", config.AppConfig.DataDir, err)
	}
	defer ledger.Close()

	svc := services.NewService(ledger)
	ctrl := controllers.NewWalletController(svc)

	r := chi.NewRouter()
	routes.Register(r, ctrl)

	logrus.Infof("wallet server listening on %s, ledger %s", config.AppConfig.Port, config.AppConfig.DataDir)
	if err := http.ListenAndServe(":"+config.AppConfig.Port, r); err != nil {
		logrus.Fatal(err)
	}
}
