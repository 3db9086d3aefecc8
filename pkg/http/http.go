package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/pawel-madurski/PredictionIO/pkg/http/controller"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoute registers http routes
func RegisterRoute(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"PUT", "POST", "GET", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		MaxAge: 12 * time.Hour,
	}))
	r.POST("/queries.json", controller.Query)
	v1 := r.Group("/v1")
	{
		v1.POST("/train", controller.Train)
		v1.POST("/deploy", controller.Deploy)
		v1.GET("/status", controller.Status)
	}
	r.GET("/metrics", prometheusHandler())
	pprof.Register(r)
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
