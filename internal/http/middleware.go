package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"digitwin/internal/core"
	"digitwin/internal/log"
)

const userIDKey = "userID"

// requireAuth validates the HS256 bearer token and stores the subject
// claim as the acting user id. Everything under /api runs behind it.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.abortError(c, core.ErrAuthRequired)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			s.abortError(c, core.ErrAuthRequired)
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			s.abortError(c, core.ErrAuthRequired)
			return
		}

		c.Set(userIDKey, sub)
		c.Next()
	}
}

func (s *Server) userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestTrace tags each request with an id and logs start and finish.
func (s *Server) requestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(log.FieldRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		s.logger.InfoContext(c.Request.Context(), "request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, c.Request.Method,
			log.FieldPath, c.Request.URL.Path,
			log.FieldClientIP, c.ClientIP())

		c.Next()

		s.logger.InfoContext(c.Request.Context(), "request finished",
			log.FieldRequestID, requestID,
			log.FieldMethod, c.Request.Method,
			log.FieldPath, c.Request.URL.Path,
			log.FieldStatusCode, c.Writer.Status(),
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

func (s *Server) securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
