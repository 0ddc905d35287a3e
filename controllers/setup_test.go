package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/config"
	"github.com/yeremiapane/queue-app/database"
	"github.com/yeremiapane/queue-app/middlewares"
	"github.com/yeremiapane/queue-app/router"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestRouter builds the full API over a seeded in-memory database.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLoggerWithLevel("error")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(db))

	r := router.SetupRouter(router.Deps{
		DB:          db,
		Queue:       services.NewQueueService(db, nil),
		Analytics:   services.NewAnalyticsService(db, time.UTC),
		Settings:    services.NewSettingsService(db),
		AuthLimiter: middlewares.NewRateLimiter(1000, time.Millisecond).RateLimit(),
	})
	return r, db
}

func doJSON(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func login(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": database.DefaultSeedPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decode(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

const (
	adminEmail = "admin@restaurant.com"
	staffEmail = "staff@restaurant.com"
	devEmail   = "developer@restaurant.com"
)
