package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"arqueo-backend/internal/cache"
	handler "arqueo-backend/internal/handlers"
	"arqueo-backend/internal/repository"
	service "arqueo-backend/internal/services/reconciliation"
	routeimport "arqueo-backend/internal/services/routes"
	"arqueo-backend/internal/services/visits"
)

// Deps are the shared resources the HTTP layer is built from. Redis may be
// nil, which disables the debtor cache.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
	Location *time.Location
	Logger   *logrus.Logger
	Clock    func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	arqueoRepo := repository.NewArqueoRepository(d.DB)
	clientRepo := repository.NewClientRepository(d.DB)
	routeRepo := repository.NewRouteRepository(d.DB)
	visitRepo := repository.NewVisitRepository(d.DB)

	debtors := cache.NewDebtorCache(d.Redis, d.CacheTTL)

	opts := []service.Option{
		service.WithLocation(d.Location),
		service.WithDebtorCache(debtors),
	}
	if d.Clock != nil {
		opts = append(opts, service.WithClock(d.Clock))
	}
	reconService := service.NewReconciliationService(arqueoRepo, d.Logger, opts...)

	visitService := visits.NewService(routeRepo, visitRepo, d.Logger, d.Location)
	if d.Clock != nil {
		visitService.SetClock(d.Clock)
	}
	importer := routeimport.NewImporter(routeRepo, d.Logger)

	reconHandler := handler.NewReconciliationHandler(reconService, d.Logger)
	clientHandler := handler.NewClientHandler(clientRepo, debtors, d.Logger)
	routeHandler := handler.NewRouteHandler(importer, visitService, d.Logger)
	visitHandler := handler.NewVisitHandler(visitService, d.Logger)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/sellers", clientHandler.RegisterSeller)
	api.GET("/clients/debtors", clientHandler.ListDebtors)

	// Arqueo routes
	api.GET("/arqueos/:sellerId", reconHandler.History)
	arqueos := api.Group("/arqueos/:sellerId/:date")
	arqueos.GET("", reconHandler.Open)
	arqueos.PUT("", reconHandler.Submit)
	arqueos.POST("/totals", reconHandler.PreviewTotals)
	arqueos.POST("/credit-lines", reconHandler.AddCreditLine)

	// Route sheets
	rt := api.Group("/routes/:sellerId")
	{
		rt.POST("/upload", routeHandler.Upload)
		rt.GET("/:day", routeHandler.ListRoute)
	}

	api.GET("/visits/:sellerId/:day", visitHandler.Checklist)
	api.PUT("/visits/:sellerId", visitHandler.Save)
}
