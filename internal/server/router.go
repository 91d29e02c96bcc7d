package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/content"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDContextKey = "arcana_user_id"

var (
	errMissingSessionValidator = errors.New("session validator dependency required")
	errMissingContentService   = errors.New("content service dependency required")
	errMissingUserService      = errors.New("user service dependency required")
)

// SessionValidator authenticates a request from its TAuth session.
type SessionValidator interface {
	ValidateRequest(r *http.Request) (auth.SessionClaims, error)
}

// UserDirectory resolves and edits the account behind a session.
type UserDirectory interface {
	ResolveUser(ctx context.Context, claims auth.SessionClaims) (users.User, error)
	Get(ctx context.Context, id string) (users.User, bool, error)
	Update(ctx context.Context, id string, update users.ProfileUpdate) (users.User, bool, error)
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	SessionValidator SessionValidator
	ContentService   *content.Service
	UserService      UserDirectory
	Database         Pinger
	AllowedOrigins   []string
	Logger           *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.SessionValidator == nil {
		return nil, errMissingSessionValidator
	}
	if deps.ContentService == nil {
		return nil, errMissingContentService
	}
	if deps.UserService == nil {
		return nil, errMissingUserService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	if len(deps.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(deps.AllowedOrigins))
	}

	handler := &httpHandler{
		sessions: deps.SessionValidator,
		content:  deps.ContentService,
		users:    deps.UserService,
		database: deps.Database,
		logger:   logger,
	}

	router.GET("/healthz", handler.handleHealth)

	api := router.Group("/api")
	api.Use(handler.authorizeRequest)

	api.GET("/strategies", handler.handleListStrategies)
	api.GET("/strategies/:id", handler.handleGetStrategy)
	api.POST("/strategies", handler.handleCreateStrategy)
	api.DELETE("/strategies/:id", handler.handleDeleteStrategy)

	api.GET("/archetypes", handler.handleListArchetypes)
	api.GET("/archetypes/latest", handler.handleLatestArchetype)
	api.GET("/archetypes/:id", handler.handleGetArchetype)
	api.POST("/archetypes", handler.handleCreateArchetype)

	api.GET("/voice-posts", handler.handleListVoicePosts)
	api.GET("/voice-posts/:id", handler.handleGetVoicePost)
	api.POST("/voice-posts", handler.handleCreateVoicePost)
	api.DELETE("/voice-posts/:id", handler.handleDeleteVoicePost)

	api.GET("/cases", handler.handleListCaseStudies)
	api.GET("/cases/:id", handler.handleGetCaseStudy)
	api.POST("/cases", handler.handleCreateCaseStudy)
	api.DELETE("/cases/:id", handler.handleDeleteCaseStudy)

	api.GET("/me", handler.handleGetProfile)
	api.PATCH("/me", handler.handleUpdateProfile)

	return router, nil
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-TAuth-Tenant"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

type httpHandler struct {
	sessions SessionValidator
	content  *content.Service
	users    UserDirectory
	database Pinger
	logger   *zap.Logger
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	claims, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredSessionToken) || errors.Is(err, auth.ErrMissingSessionToken) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
		return
	}

	user, err := h.users.ResolveUser(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, users.ErrInvalidIdentity) {
			h.logger.Warn("session carried no usable identity", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
			return
		}
		h.logger.Error("failed to resolve session user", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errorStorageFailed, "code": codeResolveUser})
		return
	}

	c.Set(userIDContextKey, user.ID)
	c.Next()
}

// owner reads the authenticated user id. Handlers abort with 401 when it is absent.
func (h *httpHandler) owner(c *gin.Context) (content.UserID, bool) {
	owner, err := content.NewUserID(c.GetString(userIDContextKey))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
		return "", false
	}
	return owner, true
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.database.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
