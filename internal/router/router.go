package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Chucho2278/subvalle-control-caja/internal/audit"
	"github.com/Chucho2278/subvalle-control-caja/internal/config"
	"github.com/Chucho2278/subvalle-control-caja/internal/handler"
	"github.com/Chucho2278/subvalle-control-caja/internal/middleware"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
	"github.com/Chucho2278/subvalle-control-caja/internal/service"
	"github.com/Chucho2278/subvalle-control-caja/internal/worker"
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
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	cajaRepo := repository.NewCajaRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	convenioRepo := repository.NewConvenioRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Audit pipeline ───────────────────────────────────────────────────────
	// Writes go through the Redis queue; the recorder falls back to a direct
	// insert when the queue is unreachable.
	dispatcher := worker.NewDispatcher(rdb)
	auditor := audit.NewRecorder(dispatcher, auditoriaRepo)

	// ── Services ─────────────────────────────────────────────────────────────
	cajaSvc := service.NewCajaService(cajaRepo, auditor)
	descuadresSvc := service.NewDescuadresService(cajaRepo)
	sucursalSvc := service.NewSucursalService(sucursalRepo, rdb, auditor)
	convenioSvc := service.NewConvenioService(convenioRepo, auditor)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(cajaSvc)
	descuadresH := handler.NewDescuadresHandler(descuadresSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalSvc)
	conveniosH := handler.NewConveniosHandler(convenioSvc)
	auditoriasH := handler.NewAuditoriasHandler(auditoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("", middleware.RequireRole("cajero", "administrador"), cajaH.Registrar)
			caja.GET("", middleware.RequireRole("cajero", "administrador"), cajaH.Listar)
			caja.GET("/:id", middleware.RequireRole("cajero", "administrador"), cajaH.Obtener)
			caja.PATCH("/:id", middleware.RequireRole("administrador"), cajaH.Actualizar)
			caja.DELETE("/:id", middleware.RequireRole("administrador"), cajaH.Eliminar)
		}

		descuadres := v1.Group("/descuadres", middleware.RequireRole("administrador"))
		{
			descuadres.GET("/top", descuadresH.Top)
			descuadres.GET("/registros", descuadresH.Registros)
		}
		v1.GET("/resumen-turnos", middleware.RequireRole("cajero", "administrador"), descuadresH.ResumenTurnos)
		v1.GET("/metricas/desglose-ventas", middleware.RequireRole("administrador"), descuadresH.DesgloseVentas)

		v1.GET("/sucursales", middleware.RequireRole("cajero", "administrador"), sucursalesH.Listar)
		sucursales := v1.Group("/sucursales", middleware.RequireRole("administrador"))
		{
			sucursales.POST("", sucursalesH.Crear)
			sucursales.PATCH("/:id", sucursalesH.Actualizar)
			sucursales.DELETE("/:id", sucursalesH.Eliminar)
		}

		v1.GET("/convenios", middleware.RequireRole("cajero", "administrador"), conveniosH.Listar)
		convenios := v1.Group("/convenios", middleware.RequireRole("administrador"))
		{
			convenios.POST("", conveniosH.Crear)
			convenios.PATCH("/:id", conveniosH.Actualizar)
			convenios.DELETE("/:id", conveniosH.Eliminar)
		}

		auditorias := v1.Group("/auditorias", middleware.RequireRole("administrador"))
		{
			auditorias.GET("", auditoriasH.Listar)
			auditorias.GET("/acciones", auditoriasH.Acciones)
		}
	}

	return r
}
