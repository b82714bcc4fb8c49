// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfare/internal/http/handlers"
	"wayfare/internal/http/middleware"
)

type RouterDeps struct {
	Planner        handlers.Planner
	Plans          handlers.PlanReader
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	schedule := handlers.NewScheduleHandler(deps.Planner, deps.Plans, deps.RequestTimeout)
	api := r.Group("/api")
	api.POST("/schedule", schedule.Create)
	api.GET("/schedule", schedule.List)
	api.GET("/schedule/:id", schedule.Get)

	return r
}
