package router

import (
	"time"

	"buzzhire/internal/config"
	"buzzhire/internal/geo"
	"buzzhire/internal/handler"
	"buzzhire/internal/infra"
	"buzzhire/internal/middleware"
	"buzzhire/internal/repository"
	"buzzhire/internal/service"
	"buzzhire/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, resolver *geo.Resolver) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	verifier := infra.NewGoogleVerifier(cfg.GoogleClientID)
	tokenStore := infra.NewRefreshTokenStore(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, verifier, tokenStore, cfg)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, resolver, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	attendanceH := handler.NewAttendanceHandler(attendanceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/google", middleware.LoginRateLimiter(), authH.GoogleLogin)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	attendance := r.Group("/v1/attendance", jwtMW)
	{
		attendance.POST("/punch-in", attendanceH.PunchIn)
		attendance.POST("/punch-out", attendanceH.PunchOut)
		attendance.GET("/today", attendanceH.Today)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
