package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// Handler handles HTTP requests for the grid operations API
type Handler struct {
	service  ports.GridService
	sessions *SessionManager
}

// NewHandler creates a new HTTP handler
func NewHandler(service ports.GridService, sessions *SessionManager) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
	}
}

// lookupUser resolves session subjects through the service
func (h *Handler) lookupUser(c *gin.Context, id int64) (*models.User, error) {
	return h.service.GetUser(c.Request.Context(), id)
}

// Register handles POST /api/register and logs the new user in
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &ports.RegisterRequest{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			writeProblem(c, http.StatusBadRequest, "Username already exists")
			return
		}
		writeError(c, err)
		return
	}

	if err := h.sessions.Issue(c, user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			writeProblem(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeError(c, err)
		return
	}

	if err := h.sessions.Issue(c, user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CurrentUser handles GET /api/user
func (h *Handler) CurrentUser(c *gin.Context) {
	user := userFrom(c)
	if user == nil {
		writeProblem(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /api/users/:id
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UserPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), actorFrom(c), id, models.UserPatch(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gridops",
	})
}
