package commands

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/satspoint/SatsPoint/internal"
	"github.com/satspoint/SatsPoint/internal/api"
	"github.com/satspoint/SatsPoint/internal/database"
	"github.com/satspoint/SatsPoint/internal/lnbits"
	"github.com/satspoint/SatsPoint/internal/metrics"
	"github.com/satspoint/SatsPoint/internal/payments"
	"github.com/satspoint/SatsPoint/internal/rate"
)

// serveCmd runs the payment service: the authenticated API backed by an
// lnbits wallet, with webhook and stream settlement tracking.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the payment service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			internal.CheckLnbitsConfiguration()
			rate.Start()

			dbPath := internal.Configuration.Database.DbPath
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
				return err
			}
			db, err := database.NewDatabase(dbPath)
			if err != nil {
				return err
			}

			ln := lnbits.NewClient(internal.Configuration.Lnbits.InvoiceKey, internal.Configuration.Lnbits.Url)
			if wallet, err := ln.Info(); err == nil {
				log.Infof("[serve] funding wallet %s (%d msat)", wallet.Name, wallet.Balance)
			} else {
				log.Warnf("[serve] could not reach lnbits wallet: %v", err)
			}

			service := payments.NewService(db, ln, internal.Configuration.Api.PublicUrl)
			hub := api.NewHub()
			service.NotifyOnSettlement(hub)

			stream := lnbits.NewStream(internal.Configuration.Lnbits.Url, internal.Configuration.Lnbits.InvoiceKey, func(paymentHash string) {
				if err := service.HandleSettlement(paymentHash); err != nil {
					log.Errorf("[serve] stream settlement failed: %v", err)
				}
			})
			stream.Start()

			handlers := api.NewPaymentHandlers(service)
			s := api.NewServer(internal.Configuration.Api.Host)
			s.AppendAuthorizedRoute("/payments/invoice", db, handlers.CreateInvoice, http.MethodPost)
			s.AppendAuthorizedRoute("/payments/history", db, handlers.History, http.MethodGet)
			s.AppendRoute("/payments/webhook", handlers.Webhook, http.MethodPost)
			s.AppendRoute("/payments/ws", hub.Handle, http.MethodGet)
			s.AppendAuthorizedRoute("/payments/{id}", db, handlers.GetPayment, http.MethodGet)
			s.AppendRoute("/health", api.Health, http.MethodGet)
			s.PathPrefix("/metrics", metrics.Handler())

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Infof("[serve] shutting down")
			return nil
		},
	}
}
