package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the API and its backing services. Degraded
// dependencies flip the status but still return 200 so load balancers treat
// the process as alive.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "postgres": "ok", "redis": "ok"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"] = "degraded"
			status["postgres"] = "down"
		}
		if rdb == nil || rdb.Ping(c.Request.Context()).Err() != nil {
			status["status"] = "degraded"
			status["redis"] = "down"
		}

		c.JSON(http.StatusOK, status)
	}
}
