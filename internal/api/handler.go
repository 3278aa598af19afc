package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"checkout-service/internal/apperr"
	"checkout-service/internal/models"
	"checkout-service/internal/service"
	"checkout-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig controls the cross-cutting middleware
type RouterConfig struct {
	AuthEnabled    bool
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Handler contains HTTP handlers
type Handler struct {
	productService *service.ProductService
	paymentService *service.PaymentService
	checks         map[string]Pinger
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler. checks are pinged by /ready.
func NewHandler(productService *service.ProductService, paymentService *service.PaymentService, checks map[string]Pinger) *Handler {
	return &Handler{
		productService: productService,
		paymentService: paymentService,
		checks:         checks,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, cfg RouterConfig) {
	registerValidators()

	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))
	router.Use(prometheusMiddleware())
	router.Use(securityHeaders())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.AuthEnabled {
		api.Use(authMiddleware(cfg.JWTSecret, h.logger))
	}
	{
		api.POST("/products", h.createProduct)
		api.GET("/products", h.getProducts)

		api.POST("/payments", h.createPayment)
		api.GET("/payments", h.getPayments)
		api.GET("/payments/status", h.getPaymentsByStatus)
		api.GET("/payments/total-completed", h.getTotalCompleted)
		api.PUT("/payments/:id/status", h.updatePaymentStatus)
		api.GET("/payments/:id/history", h.getPaymentHistory)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found - " + c.Request.URL.Path})
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = "unavailable"
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "not ready",
			"dependencies": failed,
			"time":         time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError writes err with the status its kind maps to. Internal causes are
// logged here and never sent to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// respondBindError reports a body or query that failed to bind
func respondBindError(c *gin.Context, err error) {
	if fields := formatValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": fields,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func paymentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return 0, false
	}
	return id, true
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// getProducts handles the catalog listing
func (h *Handler) getProducts(c *gin.Context) {
	products, err := h.productService.GetAllProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// createPayment handles payment creation. An authenticated caller is always
// the payment's user; the body's userId only counts when auth is off.
func (h *Handler) createPayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if userID, ok := callerID(c); ok {
		req.UserID = &userID
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// updatePaymentStatus handles a lifecycle transition
func (h *Handler) updatePaymentStatus(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	var req service.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.paymentService.UpdatePaymentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// getPayments lists all payments
func (h *Handler) getPayments(c *gin.Context) {
	payments, err := h.paymentService.GetAllPayments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

type statusQuery struct {
	Status models.PaymentStatus `form:"status" binding:"required,payment_status"`
}

// getPaymentsByStatus lists payments filtered by ?status=
func (h *Handler) getPaymentsByStatus(c *gin.Context) {
	var query statusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	payments, err := h.paymentService.GetPaymentsByStatus(c.Request.Context(), query.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// getTotalCompleted reports the sum of completed payments
func (h *Handler) getTotalCompleted(c *gin.Context) {
	total, err := h.paymentService.GetTotalCompletedPayments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.TotalCompleted{Total: total})
}

// getPaymentHistory returns the audit trail of one payment
func (h *Handler) getPaymentHistory(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	events, err := h.paymentService.GetPaymentHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
