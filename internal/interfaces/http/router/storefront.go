package router

import (
	"github.com/emedico/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront HTTP handlers. Chat and Auth may be nil to
// leave those areas unmounted.
type Handlers struct {
	System       *handler.SystemHandler
	Session      *handler.SessionHandler
	Catalog      *handler.CatalogHandler
	Pharmacy     *handler.PharmacyHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Prescription *handler.PrescriptionHandler
	Chat         *handler.ChatHandler
	Auth         *handler.AuthHandler
}

// Guards are the per-route middleware. Nil guards are skipped.
type Guards struct {
	// Session answers 404 for unknown :id sessions
	Session gin.HandlerFunc
	// Auth requires a valid access token
	Auth gin.HandlerFunc
	// OptionalAuth attaches the account of a valid token, if any
	OptionalAuth gin.HandlerFunc
	// AuthRateLimit throttles login and registration attempts
	AuthRateLimit gin.HandlerFunc
	// Upload caps prescription request bodies
	Upload gin.HandlerFunc
}

// StorefrontGroups lays out every storefront route, relative to /api/{version}
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	groups := []*DomainGroup{
		NewDomainGroup("system", "").
			GET("/system/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping),

		NewDomainGroup("catalog", "/catalog").
			GET("/medicines", h.Catalog.ListMedicines).
			GET("/medicines/:id", h.Catalog.GetMedicine).
			GET("/categories", h.Catalog.ListCategories),

		NewDomainGroup("pharmacies", "/pharmacies").
			GET("", h.Pharmacy.List),

		sessionGroup(h, g),

		NewDomainGroup("orders", "/orders").
			GET("/:id", h.Order.GetOrder).
			GET("/:id/receipt.pdf", h.Order.Receipt).
			PATCH("/:id/status", guarded(h.Order.ChangeStatus, g.Auth)...),
	}

	if h.Auth != nil {
		auth := NewDomainGroup("auth", "/auth").
			POST("/register", guarded(h.Auth.Register, g.AuthRateLimit)...).
			POST("/login", guarded(h.Auth.Login, g.AuthRateLimit)...).
			POST("/refresh", guarded(h.Auth.Refresh, g.AuthRateLimit)...).
			POST("/logout", guarded(h.Auth.Logout, g.Auth)...).
			GET("/me", guarded(h.Auth.Me, g.Auth)...)
		groups = append(groups, auth)
	}
	return groups
}

func sessionGroup(h Handlers, g Guards) *DomainGroup {
	sessions := NewDomainGroup("sessions", "/sessions").
		POST("", h.Session.Create)

	s := sessions.Group("session", "/:id")
	if g.Session != nil {
		s.Use(g.Session)
	}
	s.GET("", h.Session.Get).
		DELETE("", h.Session.Delete).
		POST("/navigate", h.Session.Navigate).
		POST("/scroll", h.Session.Scroll).
		PUT("/theme", h.Session.SetTheme).
		POST("/theme/toggle", h.Session.ToggleTheme)

	s.Group("cart", "/cart").
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:medicine_id", h.Cart.UpdateItem).
		DELETE("/items/:medicine_id", h.Cart.RemoveItem)

	s.Group("prescription", "/prescription").
		POST("", guarded(h.Prescription.Upload, g.Upload)...).
		GET("", h.Prescription.Get).
		DELETE("", h.Prescription.Clear)

	s.Group("checkout", "").
		POST("/checkout", guarded(h.Order.Checkout, g.OptionalAuth)...).
		GET("/orders", h.Order.ListSessionOrders)

	if h.Chat != nil {
		s.Group("chat", "/chat").
			GET("", h.Chat.History).
			POST("/messages", h.Chat.PostMessage).
			GET("/ws", h.Chat.Connect)
	}
	return sessions
}

// guarded prepends the non-nil guards to handler
func guarded(handler gin.HandlerFunc, guards ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	for _, guard := range guards {
		if guard != nil {
			chain = append(chain, guard)
		}
	}
	return append(chain, handler)
}
