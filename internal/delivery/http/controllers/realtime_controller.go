package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	h "joynex/internal/delivery/http/helpers"
	"joynex/internal/domain"
	"joynex/internal/feed"
	"joynex/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RealtimeRequest is a client message on the notification socket.
type RealtimeRequest struct {
	Type string `json:"type"` // "mark_read", "mark_all_read", or "h" (heartbeat)
	ID   string `json:"id"`
}

// RealtimeEvent is a server message on the notification socket.
type RealtimeEvent struct {
	Type         string               `json:"type"` // "notification", "read_ack", or "error"
	Notification *domain.Notification `json:"notification,omitempty"`
	Message      string               `json:"message,omitempty"`
	ID           string               `json:"id,omitempty"`
}

type RealtimeController struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier
	Service  domain.NotificationService
	Hub      *realtime.Hub
}

func NewRealtimeController(logger *slog.Logger, verifier domain.TokenVerifier, svc domain.NotificationService, hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{
		Logger:   logger,
		Verifier: verifier,
		Service:  svc,
		Hub:      hub,
	}
}

// Stream godoc
// @Summary Stream notifications over a websocket
// @Description Upgrades to a websocket and pushes the user's unread notifications, then live ones as they arrive. The client can mark notifications read through the socket. Browsers can pass the JWT via the token query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "JWT, for clients that cannot set the Authorization header"
// @Success 101 {string} string "switching protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /ws/notifications [get]
func (c *RealtimeController) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.authenticate(w, r)
	if !ok {
		return
	}

	seed, err := c.Service.ListUnread(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "failed to upgrade websocket", "err", err)
		return
	}
	defer ws.Close()

	ctx := r.Context()
	userFeed := feed.New(userID, notificationStore{c.Service}, seed)
	sub := c.Hub.Subscribe(userID)
	defer sub.Close()

	// Reader goroutine forwards client commands; the select loop below is the
	// only writer on the socket.
	input := make(chan RealtimeRequest)
	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			var req RealtimeRequest
			if err := ws.ReadJSON(&req); err != nil {
				var closeErr *websocket.CloseError
				if errors.As(err, &closeErr) {
					if closeErr.Code != websocket.CloseNormalClosure && closeErr.Code != websocket.CloseGoingAway {
						c.Logger.DebugContext(ctx, "websocket closed", "err", closeErr)
					}
				} else {
					c.Logger.DebugContext(ctx, "error reading websocket message", "err", err)
				}
				return
			}
			select {
			case input <- req:
			case <-quit:
				return
			}
		}
	}()

	for _, n := range userFeed.Unread() {
		if err := c.writeNotification(ws, n); err != nil {
			return
		}
	}

	for {
		select {
		case <-quit:
			return
		case n := <-sub.Events():
			if n == nil {
				return
			}
			if !userFeed.Add(n) {
				continue
			}
			if err := c.writeNotification(ws, n); err != nil {
				c.Logger.DebugContext(ctx, "error writing websocket message", "err", err)
				return
			}
		case req := <-input:
			if err := c.handleRequest(ctx, ws, userID, userFeed, req); err != nil {
				return
			}
		}
	}
}

func (c *RealtimeController) handleRequest(ctx context.Context, ws *websocket.Conn, userID string, userFeed *feed.Feed, req RealtimeRequest) error {
	switch req.Type {
	case "mark_read":
		if err := userFeed.MarkRead(ctx, req.ID); err != nil {
			msg := "failed to mark read"
			if errors.Is(err, domain.ErrNotFound) {
				msg = "notification not found"
			}
			return ws.WriteJSON(RealtimeEvent{Type: "error", ID: req.ID, Message: msg})
		}
		return ws.WriteJSON(RealtimeEvent{Type: "read_ack", ID: req.ID})
	case "mark_all_read":
		if err := c.Service.MarkAllRead(ctx, userID); err != nil {
			return ws.WriteJSON(RealtimeEvent{Type: "error", Message: "failed to mark all read"})
		}
		userFeed.Clear()
		return ws.WriteJSON(RealtimeEvent{Type: "read_ack"})
	case "h": // heartbeat
		return nil
	default:
		c.Logger.InfoContext(ctx, "unknown websocket request type", "type", req.Type)
		return nil
	}
}

func (c *RealtimeController) writeNotification(ws *websocket.Conn, n *domain.Notification) error {
	return ws.WriteJSON(RealtimeEvent{Type: "notification", Notification: n, Message: n.Message()})
}

// authenticate accepts the JWT from the Authorization header or, for browser
// websocket clients that cannot set headers, from the token query parameter.
func (c *RealtimeController) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if strings.HasPrefix(auth, prefix) {
			token = strings.TrimSpace(auth[len(prefix):])
		}
	}
	if token == "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
		return "", false
	}
	userID, err := c.Verifier.Verify(token)
	if err != nil {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
		return "", false
	}
	return userID, true
}

// notificationStore adapts domain.NotificationService to feed.Store.
type notificationStore struct {
	svc domain.NotificationService
}

func (s notificationStore) MarkRead(ctx context.Context, id, userID string) error {
	return s.svc.MarkRead(ctx, id, userID)
}
