package service

import (
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// Services aggregates the settlement services wired over one repository
// set and one gateway client. Built once in main and shared by handlers.
type Services struct {
	Orders     *orderService
	Invoices   *invoiceService
	Payments   *paymentService
	Reconciler *reconcileService
	Ledger     *InventoryLedger
	RefGen     *ReferenceGenerator
}

// NewServices wires all settlement services
func NewServices(cfg *config.Config, repos *repository.Repositories, gw GatewayClient, logger *zap.Logger) *Services {
	refgen := NewReferenceGenerator(repos.Sequence)
	ledger := NewInventoryLedger(repos.Stock, logger)
	invoices := NewInvoiceService(repos, refgen, logger)
	return &Services{
		Orders:     NewOrderService(repos, ledger, refgen, invoices, logger),
		Invoices:   invoices,
		Payments:   NewPaymentService(repos, gw, cfg.Gateway.Currency, logger),
		Reconciler: NewReconcileService(repos, ledger, gw, cfg.Gateway.WebhookSecret, logger),
		Ledger:     ledger,
		RefGen:     refgen,
	}
}
