package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/oauth"
	"github.com/raincoat98/bookmarkle-bridge/internal/queue"
	"github.com/raincoat98/bookmarkle-bridge/internal/relay"
	"github.com/raincoat98/bookmarkle-bridge/internal/security"
)

const maxRelayBody = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type SessionEstablisher interface {
	Establish(ctx context.Context, clientID string, p *domain.Principal) error
}

type Handler struct {
	Router     *relay.Router
	Sessions   SessionEstablisher
	Google     *oauth.GoogleOAuth
	JWTSecret  string
	SessionTTL time.Duration
	Store      Pinger
	Cache      Pinger
	Events     queue.Publisher
	Log        *zap.Logger
}

func NewHandler(router *relay.Router, sessions SessionEstablisher, google *oauth.GoogleOAuth,
	jwtSecret string, sessionTTL time.Duration, store, cache Pinger, events queue.Publisher, log *zap.Logger) *Handler {
	if events == nil {
		events = queue.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Router:     router,
		Sessions:   sessions,
		Google:     google,
		JWTSecret:  jwtSecret,
		SessionTTL: sessionTTL,
		Store:      store,
		Cache:      cache,
		Events:     events,
		Log:        log,
	}
}

// Relay is the one-shot message channel: one envelope in, exactly one
// result out, addressed to the resolved target origin.
func (h *Handler) Relay(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", h.Router.Origin())

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRelayBody))
	if err != nil {
		c.JSON(http.StatusOK, relay.Result{
			Type: relay.TypeBadRequest, Name: "ValidationError",
			Code: "relay/bad-request", Message: "unreadable body",
		})
		return
	}

	res := h.Router.Handle(c.Request.Context(), c.GetString(requestIDKey), body)
	c.JSON(http.StatusOK, res)
}

// RelayPreflight answers CORS preflight for the relay channel.
func (h *Handler) RelayPreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", h.Router.Origin())
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	c.Status(http.StatusNoContent)
}

// GoogleCallback completes interactive sign-in: verifies state, exchanges
// the code, mints the session token, establishes the cached session and
// wakes any restoration waiters.
func (h *Handler) GoogleCallback(c *gin.Context) {
	clientID, ok := h.Google.VerifyState(c.Query("state"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	p, err := h.Google.ExchangeAndVerify(c.Request.Context(), code)
	if err != nil {
		h.Log.Warn("oauth exchange failed", zap.String("client_id", clientID), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in failed"})
		return
	}

	token, err := security.MakeSessionToken(h.JWTSecret, p, h.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	if err := h.Sessions.Establish(c.Request.Context(), clientID, p); err != nil {
		h.Log.Error("session establish failed", zap.String("client_id", clientID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	reqID := c.GetString(requestIDKey)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.Events.Publish(ctx, queue.Exchange, queue.KeyUserSignedIn,
			queue.UserSignedIn{UserID: p.ID, Email: p.Email}, reqID); err != nil {
			h.Log.Warn("sign-in event publish failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusOK, gin.H{"user": p, "idToken": token})
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Router.Status())
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
