package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/config"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/api/handler"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/api/middleware"
	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/jwt"
	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/redis"
)

const (
	jsonBodyLimit     = 1 << 20
	multipartOverhead = 64 << 10

	importRateLimit  = 10
	importRateWindow = time.Minute
)

// Setup builds the gin engine. rdb may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	jsonLimit := middleware.BodyLimit(jsonBodyLimit)
	uploadLimit := middleware.BodyLimit(cfg.Import.MaxFileSize + multipartOverhead)
	planners := middleware.RoleAuth("admin", "manager")

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		timetable := v1.Group("/timetable")
		{
			timetable.GET("/slots", h.Timetable.List)
			timetable.GET("/slots/:id", h.Timetable.Get)
			timetable.POST("/slots", planners, jsonLimit, h.Timetable.Create)
			timetable.PUT("/slots/:id", planners, jsonLimit, h.Timetable.Update)
			timetable.DELETE("/slots/:id", planners, h.Timetable.Delete)

			timetable.GET("/days/:day", h.Timetable.ListByDay)
			timetable.GET("/classes/:classId/days/:day", h.Timetable.ListByClassAndDay)
			timetable.GET("/classes/:classId/export", h.Export.ExportClass)

			timetable.POST("/classes/:classId/week", planners, jsonLimit, h.Timetable.CreateWeek)
			timetable.POST("/classes/:classId/import", planners,
				middleware.RateLimit(rdb, importRateLimit, importRateWindow),
				uploadLimit, h.Timetable.ImportWeek)
			timetable.DELETE("/classes/:classId", planners, h.Timetable.ClearClass)
		}
	}

	return r
}
