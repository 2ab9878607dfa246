package logs

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Init configures the shared logger. Unknown levels fall back to info.
func Init(level, format string) {
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if format == "text" {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
}

// RequestLogger replaces gin's default logger with one structured entry per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			Log.WithFields(fields).Error("request completed")
		case status >= 400:
			Log.WithFields(fields).Warn("request completed")
		default:
			Log.WithFields(fields).Info("request completed")
		}
	}
}
