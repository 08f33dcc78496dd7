package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	authsvc "github.com/legnamegusta-ctrl/apporgania/internal/service/auth"
)

// SessionKey is the gin context key the auth middleware stores the verified
// session under.
const SessionKey = "session"

// AuthHandler adapts the auth service to HTTP.
type AuthHandler struct {
	svc    *authsvc.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *authsvc.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges a credential for a session token. Each failure kind maps
// to its own user-facing message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe e-mail e senha válidos"})
		return
	}

	session, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, message := authErrorResponse(err)
		h.logger.Warn("sign-in rejected", zap.String("email", req.Email), zap.Error(err))
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout revokes the caller's session token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sessão inválida"})
		return
	}

	if err := h.svc.SignOut(c.Request.Context(), token); err != nil {
		h.logger.Error("sign-out failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível encerrar a sessão"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the verified session of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	session := SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sessão inválida"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionFrom reads the session the auth middleware stored on the context.
func SessionFrom(c *gin.Context) *models.Session {
	value, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// authErrorResponse maps the auth error taxonomy to HTTP status and user
// copy. Each sentinel keeps its own message; causes stay in the logs.
func authErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUnknownUser):
		return http.StatusUnauthorized, "Usuário não encontrado"
	case errors.Is(err, models.ErrInvalidCredential):
		return http.StatusUnauthorized, "E-mail ou senha incorretos"
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests, "Muitas tentativas de login. Tente novamente mais tarde"
	case errors.Is(err, models.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable, "Erro de conexão. Tente novamente em alguns instantes"
	}
	return http.StatusInternalServerError, "Erro inesperado. Tente novamente"
}
