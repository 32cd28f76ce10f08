package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"user-accounts/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	identityKey     = "identity"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestID tags every request with an id, reusing the caller's X-Request-ID
// when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs one line per request. Errors attached with c.Error are
// logged here and never sent to the client.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes":       c.Writer.Size(),
			"request_id":  c.GetString(requestIDKey),
			"client_ip":   c.ClientIP(),
		})
		if err := c.Errors.Last(); err != nil {
			entry = entry.WithError(err.Err)
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// authenticate resolves the caller from the Authorization header. Missing or
// invalid credentials end the request with the uniform 401.
func authenticate(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := signer.FromHeader(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).CanListUsers() {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

// requireSelfOrAdmin admits admins and the owner of the account named by the
// path parameter.
func requireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).CanActOn(c.Param(param)) {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}
	}
	id, _ := v.(auth.Identity)
	return id
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
}
