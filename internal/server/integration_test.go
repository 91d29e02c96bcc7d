package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/content"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/database"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/server"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	sessionSigningSecret = "integration-secret"
	sessionCookieName    = "app_session"
	sessionIssuer        = "tauth"
	jsonContentType      = "application/json"
)

type apiClient struct {
	testContext *testing.T
	baseURL     string
	cookie      *http.Cookie
}

func (c apiClient) do(method, path string, payload any) (int, []byte) {
	c.testContext.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			c.testContext.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	request, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		c.testContext.Fatalf("failed to build request: %v", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", jsonContentType)
	}
	if c.cookie != nil {
		request.AddCookie(c.cookie)
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		c.testContext.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		c.testContext.Fatalf("failed to read response: %v", err)
	}
	return response.StatusCode, raw
}

func newTestServer(testContext *testing.T) *httptest.Server {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Options{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(testContext.TempDir(), "integration.db"),
	}, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		testContext.Fatalf("failed to access sql db: %v", err)
	}
	testContext.Cleanup(func() {
		_ = sqlDB.Close()
	})

	contentService, err := content.NewService(content.ServiceConfig{
		Database:   db,
		IDProvider: content.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build content service: %v", err)
	}
	userService, err := users.NewService(users.ServiceConfig{Database: db, Logger: zap.NewNop()})
	if err != nil {
		testContext.Fatalf("failed to build user service: %v", err)
	}
	sessionValidator, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		SigningSecret: []byte(sessionSigningSecret),
		Issuer:        sessionIssuer,
		CookieName:    sessionCookieName,
	})
	if err != nil {
		testContext.Fatalf("failed to construct session validator: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		SessionValidator: sessionValidator,
		ContentService:   contentService,
		UserService:      userService,
		Database:         sqlDB,
		Logger:           zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	testContext.Cleanup(testServer.Close)
	return testServer
}

func TestContentFlowIsScopedToSessionUser(testContext *testing.T) {
	testServer := newTestServer(testContext)

	alice := apiClient{testContext: testContext, baseURL: testServer.URL, cookie: &http.Cookie{
		Name:  sessionCookieName,
		Value: mustMintSessionToken(testContext, "google:alice", "alice@example.com", time.Now()),
	}}
	bob := apiClient{testContext: testContext, baseURL: testServer.URL, cookie: &http.Cookie{
		Name:  sessionCookieName,
		Value: mustMintSessionToken(testContext, "google:bob", "bob@example.com", time.Now()),
	}}

	status, raw := alice.do(http.MethodPost, "/api/voice-posts", map[string]any{
		"originalText": "Сегодня Луна в Скорпионе",
		"refinedText":  "Луна в Скорпионе: время отпустить старое",
		"tone":         "мистический",
	})
	if status != http.StatusCreated {
		testContext.Fatalf("unexpected create status %d: %s", status, raw)
	}
	var created content.VoicePost
	if err := json.Unmarshal(raw, &created); err != nil {
		testContext.Fatalf("failed to decode voice post: %v", err)
	}
	if created.UserID != "alice" {
		testContext.Fatalf("expected owner from session, got %q", created.UserID)
	}

	status, _ = bob.do(http.MethodGet, "/api/voice-posts/"+created.ID, nil)
	if status != http.StatusNotFound {
		testContext.Fatalf("expected foreign record to be hidden, got %d", status)
	}
	status, raw = bob.do(http.MethodGet, "/api/voice-posts", nil)
	if status != http.StatusOK || string(raw) != "[]" {
		testContext.Fatalf("expected empty list for other user, got %d %s", status, raw)
	}
	status, _ = bob.do(http.MethodDelete, "/api/voice-posts/"+created.ID, nil)
	if status != http.StatusNoContent {
		testContext.Fatalf("expected foreign delete to be a silent no-op, got %d", status)
	}

	status, _ = alice.do(http.MethodGet, "/api/voice-posts/"+created.ID, nil)
	if status != http.StatusOK {
		testContext.Fatalf("expected record to survive foreign delete, got %d", status)
	}
	status, _ = alice.do(http.MethodDelete, "/api/voice-posts/"+created.ID, nil)
	if status != http.StatusNoContent {
		testContext.Fatalf("unexpected delete status %d", status)
	}
	status, _ = alice.do(http.MethodGet, "/api/voice-posts/"+created.ID, nil)
	if status != http.StatusNotFound {
		testContext.Fatalf("expected deleted record to be gone, got %d", status)
	}

	status, raw = alice.do(http.MethodPost, "/api/cases", map[string]any{
		"reviewText": "Расклад ТАРО помог мне решиться",
		"tags":       []string{"решение"},
	})
	if status != http.StatusCreated {
		testContext.Fatalf("unexpected case create status %d: %s", status, raw)
	}
	status, raw = alice.do(http.MethodGet, "/api/cases?q=%D1%82%D0%B0%D1%80%D0%BE", nil)
	var matches []content.CaseStudy
	if err := json.Unmarshal(raw, &matches); err != nil || status != http.StatusOK {
		testContext.Fatalf("unexpected search response %d %s", status, raw)
	}
	if len(matches) != 1 {
		testContext.Fatalf("expected one case-insensitive match, got %d", len(matches))
	}
}

func TestProfileEndpoints(testContext *testing.T) {
	testServer := newTestServer(testContext)
	client := apiClient{testContext: testContext, baseURL: testServer.URL, cookie: &http.Cookie{
		Name:  sessionCookieName,
		Value: mustMintSessionToken(testContext, "google:astro", "astro@example.com", time.Now()),
	}}

	status, raw := client.do(http.MethodGet, "/api/me", nil)
	if status != http.StatusOK {
		testContext.Fatalf("unexpected profile status %d: %s", status, raw)
	}
	var profile users.User
	if err := json.Unmarshal(raw, &profile); err != nil {
		testContext.Fatalf("failed to decode profile: %v", err)
	}
	if profile.ID != "astro" || profile.Username != "astro@example.com" {
		testContext.Fatalf("unexpected provisioned profile: %#v", profile)
	}

	status, raw = client.do(http.MethodPatch, "/api/me", map[string]any{"displayName": "Астролог"})
	if status != http.StatusOK {
		testContext.Fatalf("unexpected update status %d: %s", status, raw)
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		testContext.Fatalf("failed to decode profile: %v", err)
	}
	if profile.DisplayName != "Астролог" {
		testContext.Fatalf("expected display name update, got %#v", profile)
	}

	status, _ = client.do(http.MethodPatch, "/api/me", map[string]any{"email": "broken"})
	if status != http.StatusBadRequest {
		testContext.Fatalf("expected invalid email to be rejected, got %d", status)
	}
}

func TestAPIRequiresSession(testContext *testing.T) {
	testServer := newTestServer(testContext)
	anonymous := apiClient{testContext: testContext, baseURL: testServer.URL}

	status, raw := anonymous.do(http.MethodGet, "/api/strategies", nil)
	if status != http.StatusUnauthorized || string(raw) != `{"error":"unauthorized"}` {
		testContext.Fatalf("expected unauthorized, got %d %s", status, raw)
	}

	status, raw = anonymous.do(http.MethodGet, "/healthz", nil)
	if status != http.StatusOK {
		testContext.Fatalf("expected health check without session, got %d %s", status, raw)
	}
}

func mustMintSessionToken(testContext *testing.T, userID, email string, now time.Time) string {
	testContext.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.SessionClaims{
		UserID:    userID,
		UserEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(sessionSigningSecret))
	if err != nil {
		testContext.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
