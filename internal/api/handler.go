package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/service"
	"chickenshop-admin/internal/store"
	"chickenshop-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusUpdater changes the status of an order
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// DashboardReader computes dashboard aggregations
type DashboardReader interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	MonthlyOrders(ctx context.Context) ([]service.MonthlyOrders, error)
	ProductsPerCategory(ctx context.Context) ([]service.CategoryProducts, error)
	LatestUsers(ctx context.Context) ([]service.LatestUser, error)
	FlavorDistribution(ctx context.Context) ([]service.FlavorCount, error)
}

// OrderLister serves the admin order list
type OrderLister interface {
	ListOrders(ctx context.Context) ([]service.OrderRow, error)
}

// NotificationLister serves the caller's inbox
type NotificationLister interface {
	ListMine(ctx context.Context) ([]models.Notification, error)
}

// Pinger is a dependency checked before reporting ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	statuses      StatusUpdater
	reports       DashboardReader
	orders        OrderLister
	notifications NotificationLister
	dependencies  map[string]Pinger
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	statuses StatusUpdater,
	reports DashboardReader,
	orders OrderLister,
	notifications NotificationLister,
	dependencies map[string]Pinger,
) *Handler {
	return &Handler{
		statuses:      statuses,
		reports:       reports,
		orders:        orders,
		notifications: notifications,
		dependencies:  dependencies,
		logger:        util.GetLogger(),
	}
}

// UpdateStatusRequest is the body of a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetupRoutes sets up HTTP routes. Middleware that resolves sessions must be installed by the caller
// before SetupRoutes.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		admin := v1.Group("/admin")
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.GET("/orders", h.listOrders)

		dashboard := admin.Group("/dashboard")
		dashboard.GET("", h.getDashboard)
		dashboard.GET("/monthly-orders", h.getMonthlyOrders)
		dashboard.GET("/categories", h.getCategories)
		dashboard.GET("/latest-users", h.getLatestUsers)
		dashboard.GET("/flavors", h.getFlavors)

		v1.GET("/notifications", h.listNotifications)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once every dependency answers a ping
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": name,
				"time":       time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// updateOrderStatus handles order status changes
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.statuses.UpdateOrderStatus(c.Request.Context(), orderID, req.Status); err != nil {
		h.writeError(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     orderID,
		"status": req.Status,
	})
}

// listOrders handles the admin order list
func (h *Handler) listOrders(c *gin.Context) {
	rows, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to list orders", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) getDashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) getMonthlyOrders(c *gin.Context) {
	data, err := h.reports.MonthlyOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load monthly orders", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) getCategories(c *gin.Context) {
	data, err := h.reports.ProductsPerCategory(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load categories", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) getLatestUsers(c *gin.Context) {
	data, err := h.reports.LatestUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load latest users", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) getFlavors(c *gin.Context) {
	data, err := h.reports.FlavorDistribution(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load flavor distribution", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// listNotifications handles the caller's inbox
func (h *Handler) listNotifications(c *gin.Context) {
	data, err := h.notifications.ListMine(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to list notifications", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) writeError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	var (
		validationErr *service.ValidationError
		authErr       *service.AuthenticationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
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
