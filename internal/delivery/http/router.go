package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"joynex/internal/delivery/http/controllers"
	"joynex/internal/delivery/http/middleware"
	"joynex/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	groupController *controllers.GroupController,
	notificationController *controllers.NotificationController,
	realtimeController *controllers.RealtimeController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/signin", authController.SignIn)
	mux.HandleFunc("POST /auth/verify", authController.VerifyEmail)
	mux.HandleFunc("GET /auth/me", auth(authController.Me))

	// Groups
	mux.HandleFunc("POST /groups", auth(groupController.Create))
	mux.HandleFunc("GET /groups", auth(groupController.ListAvailable))
	mux.HandleFunc("GET /groups/joined", auth(groupController.ListJoined))
	mux.HandleFunc("GET /groups/created", auth(groupController.ListCreated))
	mux.HandleFunc("GET /groups/{groupID}/members", auth(groupController.GetMembers))
	mux.HandleFunc("POST /groups/{groupID}/join", auth(groupController.Join))
	mux.HandleFunc("POST /groups/{groupID}/leave", auth(groupController.Leave))
	mux.HandleFunc("PATCH /groups/{groupID}", auth(groupController.Update))
	mux.HandleFunc("DELETE /groups/{groupID}", auth(groupController.Delete))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(notificationController.ListUnread))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(notificationController.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", auth(notificationController.MarkAllRead))

	// Realtime feed; authenticates inside the handler so browser clients can
	// pass the token as a query parameter.
	mux.HandleFunc("GET /ws/notifications", realtimeController.Stream)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
