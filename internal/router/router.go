package router

import (
	"time"

	"tradenet/internal/config"
	"tradenet/internal/handler"
	"tradenet/internal/middleware"
	"tradenet/internal/repository"
	"tradenet/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	employeeRepo := repository.NewEmployeeRepository(db)
	nodeRepo := repository.NewNodeRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(employeeRepo, cfg)
	calc := service.NewHierarchyCalculator(nodeRepo)
	nodeSvc := service.NewNodeService(nodeRepo, calc, rdb)
	itemSvc := service.NewItemService(itemRepo, nodeRepo)
	statsSvc := service.NewStatsService(nodeRepo, rdb,
		time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	nodesH := handler.NewNodesHandler(nodeSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	statsH := handler.NewStatisticsHandler(statsSvc)
	employeesH := handler.NewEmployeesHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes — every core operation sits behind the active-employee
	// policy enforced by the JWT middleware.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, employeeRepo)
	v1 := r.Group("/v1", jwtMW)
	{
		staff := middleware.RequireRole("admin", "employee")

		nodes := v1.Group("/nodes", staff)
		{
			nodes.POST("", nodesH.Create)
			nodes.GET("", nodesH.List)
			nodes.GET("/statistics", statsH.Get)
			nodes.POST("/clear-debt", nodesH.ClearDebtBulk)
			nodes.GET("/:id", nodesH.GetByID)
			nodes.PUT("/:id", nodesH.Update)
			nodes.PATCH("/:id", nodesH.Update)
			nodes.DELETE("/:id", nodesH.Delete)
			nodes.POST("/:id/clear-debt", nodesH.ClearDebt)
		}

		items := v1.Group("/items", staff)
		{
			items.POST("", itemsH.Create)
			items.GET("", itemsH.List)
			items.GET("/:id", itemsH.GetByID)
			items.PUT("/:id", itemsH.Update)
			items.DELETE("/:id", itemsH.Delete)
		}

		employees := v1.Group("/employees", middleware.RequireRole("admin"))
		{
			employees.POST("", employeesH.Create)
			employees.GET("", employeesH.List)
			employees.PUT("/:id", employeesH.Update)
			employees.DELETE("/:id", employeesH.Deactivate)
			employees.PATCH("/:id/reactivate", employeesH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
