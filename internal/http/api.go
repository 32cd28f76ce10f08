package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-accounts/internal/auth"
	"user-accounts/internal/domain"
	"user-accounts/internal/openapi"
	"user-accounts/internal/service"
)

const (
	msgUnauthorized     = "unauthorized"
	msgInvalidInput     = "Username or Password is Invalid"
	msgNothingToUpdate  = "username or password is required"
	msgInvalidID        = "Invalid Id"
	msgDeleted          = "Deleted..."
	msgInternal         = "internal server error"
	msgMalformedRequest = "invalid request body"
)

// Handler wires HTTP routes to the user service.
type Handler struct {
	users  service.UserService
	signer *auth.Signer
	logger *logrus.Logger
	apiDoc *openapi3.T
}

func NewHandler(users service.UserService, signer *auth.Signer, logger *logrus.Logger, version string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		signer: signer,
		logger: logger,
		apiDoc: openapi.Document(version),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), requestLogger(h.logger), corsMiddleware())

	router.GET("/", h.home)

	api := router.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/openapi.json", h.openAPI)
	}

	users := api.Group("/users")
	{
		users.POST("", h.createUser)
		users.POST("/", h.createUser)
		users.POST("/login", h.login)

		protected := users.Group("", authenticate(h.signer))
		protected.GET("", requireAdmin(), h.listUsers)
		protected.GET("/", requireAdmin(), h.listUsers)
		protected.GET("/:id", requireSelfOrAdmin("id"), h.getUser)
		protected.PATCH("/:id", requireSelfOrAdmin("id"), h.updateUser)
		protected.DELETE("/:id", requireSelfOrAdmin("id"), h.deleteUser)
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public shape of a user; the password is never part of it.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isadmin"`
}

// UpdatedUserResponse is returned by PATCH and, unlike every read, includes
// the stored password hash.
type UpdatedUserResponse struct {
	UserResponse
	Password string `json:"password"`
}

func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Home Page!"})
}

func (h *Handler) health(c *gin.Context) {
	if err := h.users.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) openAPI(c *gin.Context) {
	c.JSON(http.StatusOK, h.apiDoc)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := auth.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgMalformedRequest})
		return
	}
	if req.Username == "" && req.Password == "" {
		c.JSON(http.StatusOK, gin.H{"message": msgNothingToUpdate})
		return
	}

	id, ok := auth.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": msgInvalidID})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": msgInvalidID})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UpdatedUserResponse{
		UserResponse: userToResponse(*user),
		Password:     user.PasswordHash,
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := auth.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": msgInvalidID})
		return
	}

	if _, err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": msgInvalidID})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *Handler) createUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput})
			return
		}
		h.internalError(c, err)
		return
	}

	token, err := h.signer.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.Header("Authorization", token)
	c.JSON(http.StatusCreated, gin.H{
		"username":     user.Username,
		"access_token": token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": msgUnauthorized})
			return
		}
		h.internalError(c, err)
		return
	}

	token, err := h.signer.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.Header("Authorization", token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// internalError records err for the request logger and answers with a fixed
// body that carries no internal detail.
func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
}
