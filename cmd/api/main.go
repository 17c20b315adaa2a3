package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/icl-edu/course-inquiry-api/api/swagger"
	"github.com/icl-edu/course-inquiry-api/internal/gateway"
	"github.com/icl-edu/course-inquiry-api/internal/handler"
	"github.com/icl-edu/course-inquiry-api/internal/mailer"
	"github.com/icl-edu/course-inquiry-api/internal/middleware"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	"github.com/icl-edu/course-inquiry-api/internal/repository"
	"github.com/icl-edu/course-inquiry-api/internal/service"
	"github.com/icl-edu/course-inquiry-api/pkg/cache"
	"github.com/icl-edu/course-inquiry-api/pkg/config"
	"github.com/icl-edu/course-inquiry-api/pkg/database"
	"github.com/icl-edu/course-inquiry-api/pkg/logger"
	corsmiddleware "github.com/icl-edu/course-inquiry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/icl-edu/course-inquiry-api/pkg/middleware/requestid"
)

// @title Course Inquiry API
// @version 1.0.0
// @description Course inquiry intake, payment verification and enrollment backend
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	var gw gateway.Client
	if client := gateway.NewRazorpayClient(cfg.Razorpay); client != nil {
		gw = client
	} else {
		logr.Warn("razorpay credentials missing, payment endpoints disabled")
	}

	var sender mailer.Sender
	if smtp := mailer.NewSMTPSender(cfg.Email, logr); smtp != nil {
		sender = smtp
	} else {
		logr.Warn("smtp not configured, email dispatch disabled")
	}

	inquiryRepo := repository.NewInquiryRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "course-inquiry-api",
	})
	inquirySvc := service.NewInquiryService(inquiryRepo, courseRepo, validate, logr)
	paymentSvc := service.NewPaymentService(inquiryRepo, courseRepo, gw, service.PaymentConfig{
		KeySecret:            cfg.Razorpay.KeySecret,
		TestMode:             cfg.Razorpay.TestMode(),
		LookupErrorAsSuccess: cfg.Razorpay.LookupErrorAsSuccess,
	}, validate, logr)
	emailSvc := service.NewEmailService(inquiryRepo, sender, service.EmailConfig{
		BatchEnabled: cfg.Email.BatchEnabled,
		PacingDelay:  cfg.Email.PacingDelay,
	}, validate, logr)
	dashboardSvc := service.NewDashboardService(inquiryRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(inquiryRepo, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	inquiryHandler := handler.NewInquiryHandler(inquirySvc, exportSvc, dashboardSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, dashboardSvc, metricsSvc)
	emailHandler := handler.NewEmailHandler(emailSvc, metricsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	// Public intake and checkout flow used by the course landing pages.
	api.POST("/inquiries", inquiryHandler.Create)
	api.POST("/inquiries/:id/payment/order", paymentHandler.CreateOrder)
	api.POST("/payments/verify", paymentHandler.VerifySignature)
	api.POST("/payments/verify-lookup", paymentHandler.VerifyLookup)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.GET("/auth/me", authHandler.Me)

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleSupport)
	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	superadmin := middleware.RequireRoles(models.RoleSuperAdmin)

	secured.GET("/inquiries", staff, inquiryHandler.List)
	secured.GET("/inquiries/export", staff, inquiryHandler.Export)
	secured.GET("/inquiries/:id", staff, inquiryHandler.Get)
	secured.PATCH("/inquiries/:id/status", staff, inquiryHandler.UpdateStatus)
	secured.PATCH("/inquiries/:id/payment-status", admin, inquiryHandler.UpdatePaymentStatus)
	secured.DELETE("/inquiries/:id", admin, inquiryHandler.Delete)
	secured.POST("/inquiries/purge", superadmin, inquiryHandler.Purge)
	secured.POST("/inquiries/:id/payment/manual-verify", admin, paymentHandler.ManualVerify)

	secured.GET("/dashboard/stats", staff, dashboardHandler.Stats)

	secured.POST("/emails/batch", admin, emailHandler.SendBatch)
	secured.POST("/emails/send-all", admin, emailHandler.SendAll)
	secured.GET("/emails/pending", staff, emailHandler.Pending)
	secured.GET("/emails/stats", staff, emailHandler.Stats)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
