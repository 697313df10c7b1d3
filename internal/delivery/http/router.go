package http

import (
	"net/http"

	"mediconnect/internal/delivery/http/handler"
	"mediconnect/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	sessionHandler      *handler.SessionHandler
	profileHandler      *handler.ProfileHandler
	documentHandler     *handler.DocumentHandler
	appointmentHandler  *handler.AppointmentHandler
	consultationHandler *handler.ConsultationHandler
	communityHandler    *handler.CommunityHandler
	messageHandler      *handler.MessageHandler
	productHandler      *handler.ProductHandler
	cartHandler         *handler.CartHandler
	adminHandler        *handler.AdminHandler
	assistantHandler    *handler.AssistantHandler
	realtimeHandler     *handler.RealtimeHandler
	authMiddleware      *middleware.AuthMiddleware
	roleMiddleware      *middleware.RoleMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

// Handlers groups the HTTP handlers wired into the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Session      *handler.SessionHandler
	Profile      *handler.ProfileHandler
	Document     *handler.DocumentHandler
	Appointment  *handler.AppointmentHandler
	Consultation *handler.ConsultationHandler
	Community    *handler.CommunityHandler
	Message      *handler.MessageHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Admin        *handler.AdminHandler
	Assistant    *handler.AssistantHandler
	Realtime     *handler.RealtimeHandler
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         handlers.Auth,
		sessionHandler:      handlers.Session,
		profileHandler:      handlers.Profile,
		documentHandler:     handlers.Document,
		appointmentHandler:  handlers.Appointment,
		consultationHandler: handlers.Consultation,
		communityHandler:    handlers.Community,
		messageHandler:      handlers.Message,
		productHandler:      handlers.Product,
		cartHandler:         handlers.Cart,
		adminHandler:        handlers.Admin,
		assistantHandler:    handlers.Assistant,
		realtimeHandler:     handlers.Realtime,
		authMiddleware:      authMiddleware,
		roleMiddleware:      roleMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Public catalogue
	api.HandleFunc("/doctors", r.profileHandler.ListDoctors).Methods(http.MethodGet)
	api.HandleFunc("/products", r.productHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", r.productHandler.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/community/posts", r.communityHandler.ListPosts).Methods(http.MethodGet)
	api.HandleFunc("/community/posts/{id}", r.communityHandler.GetPost).Methods(http.MethodGet)

	// Authenticated routes; every request carries its resolved session
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.Use(r.roleMiddleware.ResolveSession)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/logout-all", r.authHandler.LogoutAll).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/session", r.sessionHandler.GetSession).Methods(http.MethodGet)

	protected.HandleFunc("/profile", r.profileHandler.GetMyProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", r.profileHandler.UpdateMyProfile).Methods(http.MethodPut)

	protected.HandleFunc("/documents", r.documentHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/documents", r.documentHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/documents/{id}", r.documentHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}/download", r.documentHandler.Download).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}", r.documentHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/appointments", r.appointmentHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", r.appointmentHandler.Book).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)

	protected.HandleFunc("/consultations", r.consultationHandler.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/consultations/{id}/join", r.consultationHandler.Join).Methods(http.MethodPost)

	protected.HandleFunc("/community/posts", r.communityHandler.CreatePost).Methods(http.MethodPost)
	protected.HandleFunc("/community/posts/{id}", r.communityHandler.DeletePost).Methods(http.MethodDelete)
	protected.HandleFunc("/community/posts/{id}/comments", r.communityHandler.AddComment).Methods(http.MethodPost)
	protected.HandleFunc("/community/comments/{id}", r.communityHandler.DeleteComment).Methods(http.MethodDelete)

	protected.HandleFunc("/messages", r.messageHandler.Send).Methods(http.MethodPost)
	protected.HandleFunc("/messages/{peerId}", r.messageHandler.Conversation).Methods(http.MethodGet)
	protected.HandleFunc("/messages/{peerId}/read", r.messageHandler.MarkConversationRead).Methods(http.MethodPost)
	protected.HandleFunc("/notifications", r.messageHandler.ListNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/unread-count", r.messageHandler.UnreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", r.messageHandler.MarkAllNotificationsRead).Methods(http.MethodPost)
	protected.HandleFunc("/notifications/{id}/read", r.messageHandler.MarkNotificationRead).Methods(http.MethodPost)

	protected.HandleFunc("/cart", r.cartHandler.GetCart).Methods(http.MethodGet)
	protected.HandleFunc("/cart", r.cartHandler.Clear).Methods(http.MethodDelete)
	protected.HandleFunc("/cart/items", r.cartHandler.AddItem).Methods(http.MethodPost)
	protected.HandleFunc("/cart/items/{id}", r.cartHandler.UpdateItem).Methods(http.MethodPut)
	protected.HandleFunc("/cart/items/{id}", r.cartHandler.RemoveItem).Methods(http.MethodDelete)
	protected.HandleFunc("/cart/checkout", r.cartHandler.Checkout).Methods(http.MethodPost)

	protected.HandleFunc("/assistant/chat", r.assistantHandler.Chat).Methods(http.MethodPost)
	protected.HandleFunc("/realtime/{table}", r.realtimeHandler.Stream).Methods(http.MethodGet)

	// Doctor routes
	doctor := protected.NewRoute().Subrouter()
	doctor.Use(r.roleMiddleware.RequireDoctor)
	doctor.HandleFunc("/consultations", r.consultationHandler.Start).Methods(http.MethodPost)
	doctor.HandleFunc("/consultations/{id}/end", r.consultationHandler.End).Methods(http.MethodPost)

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(r.roleMiddleware.RequireAdmin)
	admin.HandleFunc("/stats", r.adminHandler.DashboardStats).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.adminHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/profiles/{id}", r.profileHandler.AdminUpdateProfile).Methods(http.MethodPut)
	admin.HandleFunc("/products", r.productHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}", r.productHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", r.productHandler.Delete).Methods(http.MethodDelete)

	r.router.Use(middleware.Metrics)

	return r.router
}

// Handler returns the routed API behind CORS. CORS wraps the router instead
// of being a mux middleware so preflight requests to any path are answered.
func (r *Router) Handler() http.Handler {
	return r.corsMiddleware.Handle(r.Setup())
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
