package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/ledgerly/internal/audit/domain"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/config"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
	obsmiddleware "github.com/smallbiznis/ledgerly/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/ledgerly/internal/observability/metrics"
	obstracing "github.com/smallbiznis/ledgerly/internal/observability/tracing"
	productdomain "github.com/smallbiznis/ledgerly/internal/product/domain"
	voucherdomain "github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	log        *zap.Logger
	companySvc companydomain.Service
	ledgerSvc  ledgerdomain.Service
	productSvc productdomain.Service
	voucherSvc voucherdomain.Service
	auditSvc   auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Log        *zap.Logger
	CompanySvc companydomain.Service
	LedgerSvc  ledgerdomain.Service
	ProductSvc productdomain.Service
	VoucherSvc voucherdomain.Service
	AuditSvc   auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		log:        p.Log.Named("http.server"),
		companySvc: p.CompanySvc,
		ledgerSvc:  p.LedgerSvc,
		productSvc: p.ProductSvc,
		voucherSvc: p.VoucherSvc,
		auditSvc:   p.AuditSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Companies --------
	api.POST("/companies", s.CreateCompany)

	company := api.Group("/companies/:company_id", s.CompanyRequired())
	company.GET("", s.GetCompany)
	company.PATCH("", s.UpdateCompany)

	// -------- Ledgers --------
	company.GET("/ledgers", s.ListLedgers)
	company.POST("/ledgers", s.CreateLedger)

	// -------- Products --------
	company.GET("/products", s.ListProducts)
	company.POST("/products", s.CreateProduct)

	// -------- Vouchers --------
	company.GET("/vouchers", s.ListVouchers)
	company.POST("/vouchers", s.CreateVoucher)
	company.POST("/vouchers/preview", s.PreviewVoucher)
	company.GET("/vouchers/next-number", s.NextVoucherNumber)
	company.GET("/vouchers/:id", s.GetVoucherByID)
	company.PUT("/vouchers/:id", s.UpdateVoucher)
	company.DELETE("/vouchers/:id", s.DeleteVoucher)

	// -------- Audit --------
	company.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
