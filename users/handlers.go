package users

import (
	"context"
	"errors"
	"net/http"

	"adedonha/domain"
	"adedonha/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Registry is the read/write surface these endpoints need; both storage
// implementations satisfy it. No game logic lives here.
type Registry interface {
	GetOrCreate(ctx context.Context, id, name string) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	AddFriend(ctx context.Context, userId, friendId string) error
	TopByCoins(ctx context.Context, limit int) ([]domain.User, error)
	FriendsOf(ctx context.Context, id string) ([]domain.User, error)
}

const rankingSize = 100

type Handler struct {
	registry Registry
}

func NewHandler(registry Registry) *Handler {
	return &Handler{registry: registry}
}

// RankingHandler returns the top users by coin balance.
func (h *Handler) RankingHandler(ctx *gin.Context) {
	list, err := h.registry.TopByCoins(ctx.Request.Context(), rankingSize)
	if err != nil {
		logger.Criticalf("ranking query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, list)
}

func (h *Handler) ProfileHandler(ctx *gin.Context) {
	user, err := h.registry.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Criticalf("profile query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if user.Friends == nil {
		user.Friends = []string{}
	}
	ctx.JSON(http.StatusOK, user)
}

type upsertRequest struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
}

// UpsertHandler creates or fetches a user; a missing id gets a fresh uuid.
func (h *Handler) UpsertHandler(ctx *gin.Context) {
	req := upsertRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid-request-format"})
		return
	}
	if req.UserId == "" {
		req.UserId = uuid.NewString()
	}

	user, err := h.registry.GetOrCreate(ctx.Request.Context(), req.UserId, req.Name)
	if err != nil {
		logger.Criticalf("user upsert failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

type addFriendRequest struct {
	UserId   string `json:"userId"`
	FriendId string `json:"friendId"`
}

// AddFriendHandler creates a symmetric friend link; both sides are updated.
func (h *Handler) AddFriendHandler(ctx *gin.Context) {
	req := addFriendRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserId == "" || req.FriendId == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId and friendId are required"})
		return
	}

	if err := h.registry.AddFriend(ctx.Request.Context(), req.UserId, req.FriendId); err != nil {
		logger.Criticalf("friend link failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	user, err := h.registry.Get(ctx.Request.Context(), req.UserId)
	if err != nil {
		logger.Criticalf("friend readback failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if user.Friends == nil {
		user.Friends = []string{}
	}
	ctx.JSON(http.StatusOK, gin.H{"friends": user.Friends})
}

// FriendRankingHandler ranks a user's friends by coins. Unknown users get an
// empty list, not an error.
func (h *Handler) FriendRankingHandler(ctx *gin.Context) {
	list, err := h.registry.FriendsOf(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		logger.Criticalf("friend ranking failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if list == nil {
		list = []domain.User{}
	}
	ctx.JSON(http.StatusOK, list)
}
