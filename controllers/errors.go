package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, services.ErrLockNotAcquired) {
		return http.StatusServiceUnavailable
	}
	switch services.KindOf(err) {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	utils.RespondError(c, code, err)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// performer names the authenticated user in override logs.
func performer(c *gin.Context) string {
	if email, ok := c.Get("email"); ok {
		if s, _ := email.(string); s != "" {
			return s
		}
	}
	if id, ok := c.Get("user_id"); ok {
		return fmt.Sprintf("user:%v", id)
	}
	return "unknown"
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	s, _ := role.(string)
	return models.IsAdminRole(s)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// queryDate accepts YYYY-MM-DD or RFC3339.
func queryDate(c *gin.Context, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, services.NewValidationError("%s must be YYYY-MM-DD", key)
	}
	return t, nil
}
