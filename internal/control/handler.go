// Package control exposes the session control plane over HTTP. Every
// endpoint is a stateless JSON POST; all cross-request state lives in
// the coordination store and the object store.
package control

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presenter-service/internal/session"
	"presenter-service/internal/slides"
)

type Handler struct {
	allocator     *session.Allocator
	authenticator *session.Authenticator
	relay         *session.Relay
	store         session.Store
	slides        *slides.Resolver
	sessionTTL    time.Duration
}

func NewHandler(
	allocator *session.Allocator,
	authenticator *session.Authenticator,
	relay *session.Relay,
	store session.Store,
	resolver *slides.Resolver,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		allocator:     allocator,
		authenticator: authenticator,
		relay:         relay,
		store:         store,
		slides:        resolver,
		sessionTTL:    sessionTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	ctrl := r.Group("/control")
	ctrl.POST("/create_session", h.CreateSession)
	ctrl.POST("/update_state", h.UpdateState)
	ctrl.POST("/poll_state", h.PollState)
	ctrl.POST("/load_slide", h.LoadSlide)
	ctrl.POST("/put_slide", h.PutSlide)
	ctrl.POST("/renew_session", h.RenewSession)
}

type createSessionResponse struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

// CreateSession allocates a connection code bound to a fresh token.
// Capacity exhaustion is reported as a retryable 500, never hidden.
func (h *Handler) CreateSession(c *gin.Context) {
	code, info, err := h.allocator.Allocate(c.Request.Context())
	if err != nil {
		if errors.Is(err, session.ErrCapacityExhausted) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "session allocation failed - try again.",
			})
			return
		}
		h.internalError(c, "create session", err)
		return
	}

	slog.Info("session created", "code", code)

	c.JSON(http.StatusOK, createSessionResponse{
		Code:  code,
		Token: info.Token,
	})
}

type updateStateRequest struct {
	Code        string  `json:"code"`
	Token       string  `json:"token"`
	TotalPages  *uint64 `json:"totalPages"`
	CurrentPage *uint64 `json:"currentPage"`
}

// UpdateState writes the presentation state, last writer wins. A single
// presenter is assumed, so no optimistic check guards the write.
func (h *Handler) UpdateState(c *gin.Context) {
	var req updateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TotalPages == nil || req.CurrentPage == nil {
		badParameters(c)
		return
	}

	totalPages, currentPage := *req.TotalPages, *req.CurrentPage
	if currentPage > totalPages || (totalPages > 0 && currentPage == 0) {
		badParameters(c)
		return
	}

	info, err := h.authenticator.ResolveAuthenticated(c.Request.Context(), req.Code, req.Token)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	state := session.PresentationState{
		TotalPages:  totalPages,
		CurrentPage: currentPage,
		UpdateTime:  time.Now().UnixMilli(),
	}
	if err := h.store.SetState(c.Request.Context(), info.Token, state); err != nil {
		h.internalError(c, "update state", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

type pollStateRequest struct {
	Code     string `json:"code"`
	LastTime *int64 `json:"lastTime"`
}

// PollState blocks until the presentation state is newer than lastTime
// or the poll window closes. The empty window returns a JSON null, which
// tells the viewer to re-poll with the same lastTime.
func (h *Handler) PollState(c *gin.Context) {
	var req pollStateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LastTime == nil || *req.LastTime < 0 {
		badParameters(c)
		return
	}

	info, err := h.authenticator.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	state, err := h.relay.Poll(c.Request.Context(), info.Token, *req.LastTime)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away mid-poll; nothing to answer.
			c.Abort()
			return
		}
		h.internalError(c, "poll state", err)
		return
	}

	if state == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, state)
}

type loadSlideRequest struct {
	Code       string  `json:"code"`
	SlideIndex *uint64 `json:"slideIndex"`
}

// LoadSlide hands a viewer a presigned download URL for one slide.
func (h *Handler) LoadSlide(c *gin.Context) {
	var req loadSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SlideIndex == nil {
		badIndex(c)
		return
	}

	info, err := h.authenticator.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	slideURL, err := h.slides.DownloadURL(c.Request.Context(), info.Token, *req.SlideIndex)
	if err != nil {
		h.internalError(c, "load slide", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slideUrl": slideURL})
}

type putSlideRequest struct {
	Code       string  `json:"code"`
	Token      string  `json:"token"`
	SlideIndex *uint64 `json:"slideIndex"`
}

// PutSlide hands the presenter a presigned upload URL for one slide.
// The slide bytes then travel directly to the object store.
func (h *Handler) PutSlide(c *gin.Context) {
	var req putSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SlideIndex == nil {
		badIndex(c)
		return
	}

	info, err := h.authenticator.ResolveAuthenticated(c.Request.Context(), req.Code, req.Token)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	uploadURL, err := h.slides.UploadURL(c.Request.Context(), info.Token, *req.SlideIndex)
	if err != nil {
		h.internalError(c, "put slide", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL})
}

type renewSessionRequest struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

// RenewSession heartbeats a live session's TTL. The compare-and-set in
// the store makes a renewal that raced a delete fail loudly instead of
// resurrecting the session.
func (h *Handler) RenewSession(c *gin.Context) {
	var req renewSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badParameters(c)
		return
	}

	info, err := h.authenticator.ResolveAuthenticated(c.Request.Context(), req.Code, req.Token)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	if err := h.store.Renew(c.Request.Context(), req.Code, *info, h.sessionTTL); err != nil {
		if errors.Is(err, session.ErrConflict) {
			errBadSession(c)
			return
		}
		h.internalError(c, "renew session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrBadSession) {
		errBadSession(c)
		return
	}
	h.internalError(c, "resolve session", err)
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	slog.Error("control plane failure", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func errBadSession(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "bad session credentials"})
}

func badParameters(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad parameters"})
}

func badIndex(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad index"})
}
