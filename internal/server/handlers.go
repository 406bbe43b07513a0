package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/business-nexus/backend/internal/auth"
	"github.com/business-nexus/backend/internal/domain"
	"github.com/business-nexus/backend/internal/storage"
)

const ctxClaimsKey = "authClaims"

// APIHandlers exposes the REST endpoints: registration, login, profiles,
// directories, collaboration requests and chat history.
type APIHandlers struct {
	logger *slog.Logger
	store  storage.Store
	auth   *auth.Authenticator
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, store storage.Store, authenticator *auth.Authenticator) *APIHandlers {
	return &APIHandlers{logger: logger, store: store, auth: authenticator}
}

// requireAuth rejects requests without a valid bearer token and stashes the
// verified claims on the context.
func (h *APIHandlers) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "access token required"})
			return
		}

		claims, err := h.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

func callerClaims(c *gin.Context) auth.Claims {
	claims, _ := c.MustGet(ctxClaimsKey).(auth.Claims)
	return claims
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Avatar    string `json:"avatar"`
}

func (h *APIHandlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user data"})
		return
	}
	if !domain.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "role must be investor or entrepreneur"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), domain.NewUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Bio:          req.Bio,
		Location:     req.Location,
		Avatar:       req.Avatar,
	})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user already exists"})
		return
	}
	if err != nil {
		h.logger.Error("user creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
		return
	}

	h.respondWithToken(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *APIHandlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	if err != nil {
		h.logger.Error("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
		return
	}

	h.respondWithToken(c, user)
}

func (h *APIHandlers) respondWithToken(c *gin.Context, user domain.User) {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.logger.Error("token issuance failed", "userId", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *APIHandlers) currentUser(c *gin.Context) {
	claims := callerClaims(c)
	user, err := h.store.GetUserWithProfile(c.Request.Context(), claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		h.logger.Error("current user lookup failed", "userId", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *APIHandlers) getProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	user, err := h.store.GetUserWithProfile(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		h.logger.Error("profile lookup failed", "userId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *APIHandlers) updateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid profile data"})
		return
	}

	claims := callerClaims(c)
	profile, err := h.store.UpsertProfile(c.Request.Context(), claims.UserID, patch)
	if err != nil {
		h.logger.Error("profile update failed", "userId", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *APIHandlers) listEntrepreneurs(c *gin.Context) {
	h.listByRole(c, domain.RoleEntrepreneur)
}

func (h *APIHandlers) listInvestors(c *gin.Context) {
	h.listByRole(c, domain.RoleInvestor)
}

func (h *APIHandlers) listByRole(c *gin.Context, role string) {
	users, err := h.store.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		h.logger.Error("directory listing failed", "role", role, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch users"})
		return
	}
	if users == nil {
		users = []domain.UserWithProfile{}
	}
	c.JSON(http.StatusOK, users)
}

type createRequestBody struct {
	ReceiverID int64  `json:"receiverId" binding:"required"`
	Message    string `json:"message"`
}

func (h *APIHandlers) createRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "receiverId is required"})
		return
	}

	claims := callerClaims(c)
	req, err := h.store.CreateRequest(c.Request.Context(), claims.UserID, body.ReceiverID, body.Message)
	if err != nil {
		h.logger.Error("request creation failed", "senderId", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create collaboration request"})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *APIHandlers) listRequests(c *gin.Context) {
	claims := callerClaims(c)
	requests, err := h.store.ListRequestsForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("request listing failed", "userId", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch collaboration requests"})
		return
	}
	if requests == nil {
		requests = []domain.RequestWithUsers{}
	}
	c.JSON(http.StatusOK, requests)
}

type updateRequestBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *APIHandlers) updateRequestStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request id"})
		return
	}

	var body updateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required"})
		return
	}
	if body.Status != domain.RequestAccepted && body.Status != domain.RequestRejected {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be accepted or rejected"})
		return
	}

	req, err := h.store.UpdateRequestStatus(c.Request.Context(), id, body.Status)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "request not found"})
	case errors.Is(err, storage.ErrRequestClosed):
		c.JSON(http.StatusConflict, gin.H{"message": "request already resolved"})
	case err != nil:
		h.logger.Error("request status update failed", "requestId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update request status"})
	default:
		c.JSON(http.StatusOK, req)
	}
}

func (h *APIHandlers) chatHistory(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	claims := callerClaims(c)
	messages, err := h.store.ListConversation(c.Request.Context(), claims.UserID, otherID)
	if err != nil {
		h.logger.Error("conversation fetch failed", "userId", claims.UserID, "otherId", otherID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []domain.MessageWithSender{}
	}
	c.JSON(http.StatusOK, messages)
}
