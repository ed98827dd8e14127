package api

import (
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/service"
	"shop-service/internal/session"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// Handler contains HTTP handlers
type Handler struct {
	users      *service.UserService
	catalog    *service.CatalogService
	cart       *service.CartService
	checkout   *service.CheckoutService
	orders     *service.OrderService
	sessions   session.Store
	cookieName string
	cookieTTL  time.Duration
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	sessions session.Store,
	cookieName string,
	cookieTTL time.Duration,
) *Handler {
	return &Handler{
		users:      users,
		catalog:    catalog,
		cart:       cart,
		checkout:   checkout,
		orders:     orders,
		sessions:   sessions,
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
		logger:     util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.sessionMiddleware())
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/logout", h.logout)
			auth.GET("/me", h.requireAuth(), h.currentUser)
			auth.PUT("/profile", h.requireAuth(), h.updateProfile)
			auth.PUT("/password", h.requireAuth(), h.changePassword)
		}

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.POST("/products", h.requireAdmin(), h.createProduct)
		v1.PUT("/products/:id", h.requireAdmin(), h.updateProduct)
		v1.DELETE("/products/:id", h.requireAdmin(), h.deleteProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:productId", h.updateCartItem)
		v1.DELETE("/cart/items/:productId", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/orders", h.requireAuth(), h.placeOrder)
		v1.GET("/orders", h.requireAuth(), h.listOrders)
		v1.GET("/orders/:id", h.requireAuth(), h.getOrder)
		v1.PUT("/orders/:id/status", h.requireAdmin(), h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// sessionMiddleware resolves the session cookie to server-side state,
// creating a fresh session (and cookie) for first-time visitors, and saves
// the session back after the handler runs.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session

		if id, err := c.Cookie(h.cookieName); err == nil && id != "" {
			sess, err = h.sessions.Get(c.Request.Context(), id)
			if err != nil {
				h.logger.Error("Failed to load session", zap.Error(err))
			}
		}

		if sess == nil {
			sess = session.New()
			c.SetCookie(h.cookieName, sess.ID, int(h.cookieTTL.Seconds()), "/", "", false, true)
		}

		c.Set(sessionContextKey, sess)
		c.Next()

		if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
			h.logger.Error("Failed to save session", zap.Error(err))
		}
	}
}

func (h *Handler) session(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}

// requireAuth rejects requests without a signed-in user.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.session(c).User == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects requests unless the session user is an admin.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := h.session(c)
		if sess.User == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
