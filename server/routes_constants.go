package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"

	// User Routes
	RouteUsersMe        = "/users/me"
	RouteUsersSearch    = "/users/search"
	RouteUsersMeMailbox = "/users/me/mailbox"
	RouteUsersMeTree    = "/users/me/tree"

	// Message Routes
	RouteMessages     = "/messages"
	RouteMessagesSent = "/messages/sent"

	// Ornament Routes
	RouteOrnaments   = "/ornaments"
	RouteOrnamentsMy = "/ornaments/my"

	// Tree Routes
	RouteTree   = "/trees/{userId}"
	RouteTreeMe = "/trees/me"

	// Notification Routes
	RouteNotifications    = "/notifications"
	RouteNotificationRead = "/notifications/{id}/read"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)
