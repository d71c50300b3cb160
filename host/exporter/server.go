package exporter

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Router builds the HTTP API of the daemon.
func (d *Daemon) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(d.log))
	router.GET("/status", d.getStatus)
	router.GET("/healthz", d.getHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.metrics.Registry, promhttp.HandlerOpts{})))
	return router
}

func (d *Daemon) getStatus(c *gin.Context) {
	r, ok := d.Latest()
	if !ok {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"error": "no reading yet"})
		return
	}
	c.IndentedJSON(http.StatusOK, r)
}

func (d *Daemon) getHealth(c *gin.Context) {
	r, ok := d.Latest()
	switch {
	case !ok:
		c.String(http.StatusServiceUnavailable, "no reading yet")
	case d.stale(r.Time):
		c.String(http.StatusServiceUnavailable, "stale since %s", r.Time.Format(time.RFC3339))
	default:
		c.String(http.StatusOK, "ok")
	}
}

func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		latency := int(math.Ceil(float64(time.Since(start).Nanoseconds()) / 1000000.0))
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency,
			"method":     c.Request.Method,
			"path":       path,
		})

		msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latency)
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else if statusCode >= http.StatusInternalServerError {
			entry.Error(msg)
		} else {
			entry.Debug(msg)
		}
	}
}
