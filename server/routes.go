package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterAPIRoute("GET "+RouteAuthLogin, s.LoginHandler(), s.RateLimitMiddleware)
	s.RegisterAPIRoute("GET "+RouteAuthCallback, s.CallbackHandler(), s.RateLimitMiddleware)
	s.RegisterAPIRoute("POST "+RouteAuthLogout, s.LogoutHandler())

	// USERS
	s.RegisterAPIRoute("GET "+RouteUsersMe, s.MeHandler(), s.RequireAuth())
	s.RegisterAPIRoute("GET "+RouteUsersSearch, s.SearchUsersHandler(), s.RequireAuth())
	s.RegisterAPIRoute("PATCH "+RouteUsersMeMailbox, s.UpdateMailboxHandler(), s.RequireAuth())
	s.RegisterAPIRoute("PATCH "+RouteUsersMeTree, s.UpdateTreeLockHandler(), s.RequireAuth())

	// MESSAGES
	s.RegisterAPIRoute("POST "+RouteMessages, s.SendMessageHandler(), s.RequireAuth())
	s.RegisterAPIRoute("GET "+RouteMessages, s.InboxHandler(), s.RequireAuth())
	s.RegisterAPIRoute("GET "+RouteMessagesSent, s.OutboxHandler(), s.RequireAuth())

	// ORNAMENTS
	s.RegisterAPIRoute("GET "+RouteOrnaments, s.ListOrnamentsHandler())
	s.RegisterAPIRoute("GET "+RouteOrnamentsMy, s.MyOrnamentsHandler(), s.RequireAuth())

	// TREES
	s.RegisterAPIRoute("GET "+RouteTree, s.GetTreeHandler(), s.RequireAuth())
	s.RegisterAPIRoute("PUT "+RouteTreeMe, s.SaveTreeHandler(), s.RequireAuth())

	// NOTIFICATIONS
	s.RegisterAPIRoute("GET "+RouteNotifications, s.ListNotificationsHandler(), s.RequireAuth())
	s.RegisterAPIRoute("PATCH "+RouteNotificationRead, s.MarkNotificationReadHandler(), s.RequireAuth())

	// OPS
	s.RegisterAPIRoute("GET "+RouteHealth, s.HealthHandler())
	s.RegisterAPIRoute("GET "+RouteMetrics, s.MetricsHandler())

	// CORS preflight for every path
	s.RegisterAPIRoute("OPTIONS /", s.PreflightHandler())
}
