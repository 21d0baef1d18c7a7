package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerPaymentRoutes(v1, services.Allocation)
	registerInvoiceRoutes(v1, services.Posting)
	registerExpenseRoutes(v1, services.Posting)
	registerReportRoutes(v1, services.Statement, services.Obligation)
	registerDebtorRoutes(v1, services.Obligation, services.Posting, services.Forfeiture)
}
