package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/notifications"
	"usertemplate/backend/internal/ratelimit"
	"usertemplate/backend/internal/repository"
	"usertemplate/backend/internal/security"
	"usertemplate/backend/internal/services"
	"usertemplate/backend/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMail struct {
	Subject, Body, To string
}

// MockMailer records messages instead of sending them.
type MockMailer struct {
	mu   sync.Mutex
	Sent []sentMail
}

func (m *MockMailer) SendMail(_ context.Context, subject, body, to string, _ ...notifications.MailOption) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMail{subject, body, to})
	return true
}

func (m *MockMailer) SendMailAsync(ctx context.Context, subject, body, to string, opts ...notifications.MailOption) <-chan bool {
	done := make(chan bool, 1)
	done <- m.SendMail(ctx, subject, body, to, opts...)
	close(done)
	return done
}

func (m *MockMailer) Last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return sentMail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

type testServer struct {
	router  *gin.Engine
	svc     *services.UserService
	tokens  *auth.TokenManager
	mailer  *MockMailer
	limiter *ratelimit.MemoryLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	store := repository.NewGormStore(db)
	hasher := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	svc := services.NewUserService(store, hasher)
	tokens, err := auth.NewTokenManager("handler_test_secret_key_that_is_long", time.Hour, false)
	require.NoError(t, err)

	ts := &testServer{
		svc:     svc,
		tokens:  tokens,
		mailer:  &MockMailer{},
		limiter: ratelimit.NewMemoryLimiter(3, time.Minute),
	}
	h := New(Deps{
		Users:           svc,
		Tokens:          tokens,
		Mailer:          ts.mailer,
		Limiter:         ts.limiter,
		DB:              store,
		Logger:          zap.NewNop(),
		FrontendBaseURL: "https://app.example.com",
		ResetTokenTTL:   time.Hour,
	})

	r := gin.New()
	r.GET("/health", h.HealthHandler)
	a := r.Group("/auth")
	a.POST("/register", h.RegisterHandler)
	a.POST("/login", h.LoginHandler)
	a.POST("/logout", tokens.AuthMiddleware(), h.LogoutHandler)
	a.POST("/forgot-password", h.ForgotPasswordHandler)
	a.POST("/reset-password", h.ResetPasswordHandler)
	a.GET("/email-available", h.EmailAvailableHandler)
	v1 := r.Group("/api/v1", tokens.AuthMiddleware())
	v1.GET("/me", h.GetMeHandler)
	v1.PUT("/me", h.UpdateMeHandler)
	v1.PUT("/me/password", h.UpdateMyPasswordHandler)
	v1.GET("/users", auth.RequireRoles(models.RoleAdmin, models.RoleManager), h.ListUsersHandler)
	admin := v1.Group("/users/:userId", auth.RequireRoles(models.RoleAdmin))
	admin.GET("", h.GetUserHandler)
	admin.PUT("", h.UpdateUserHandler)
	admin.DELETE("", h.DeleteUserHandler)
	ts.router = r
	return ts
}

func (ts *testServer) addUser(t *testing.T, name, email, pw string, role models.UserRole) *models.User {
	t.Helper()
	u, err := ts.svc.AddUser(context.Background(), name, email, pw, role)
	require.NoError(t, err)
	return u
}

func (ts *testServer) sessionFor(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	tok, _, err := ts.tokens.GenerateToken(u)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: tok}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

// jsonBody is shorthand for a JSON object body.
type jsonBody = map[string]interface{}

func uintStr(v uint) string { return strconv.FormatUint(uint64(v), 10) }
