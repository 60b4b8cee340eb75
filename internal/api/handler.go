package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CatalogReader is the catalog surface used by the HTTP layer
type CatalogReader interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
}

// Handler contains the HTTP handlers for the storefront API
type Handler struct {
	catalog   CatalogReader
	cart      *service.CartService
	checkout  *service.CheckoutService
	orders    *service.OrderService
	search    *service.SearchService
	miniCart  *service.MiniCartService
	tokenizer *service.CardTokenizer
	gateway   service.PaymentIntentGateway
	publisher service.CheckoutEventPublisher
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. The publisher may be nil.
func NewHandler(
	catalog CatalogReader,
	cart *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	search *service.SearchService,
	miniCart *service.MiniCartService,
	tokenizer *service.CardTokenizer,
	gateway service.PaymentIntentGateway,
	publisher service.CheckoutEventPublisher,
) *Handler {
	return &Handler{
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		orders:    orders,
		search:    search,
		miniCart:  miniCart,
		tokenizer: tokenizer,
		gateway:   gateway,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/search", h.searchProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.GET("/minicart", h.getMiniCart)
		v1.POST("/minicart/open", h.openMiniCart)
		v1.POST("/minicart/expand", h.expandMiniCart)
		v1.POST("/minicart/close", h.closeMiniCart)

		v1.GET("/checkout", h.getCheckout)
		v1.POST("/checkout/customer", h.setCustomer)
		v1.POST("/checkout/payment-method", h.selectPaymentMethod)
		v1.POST("/checkout/card", h.attachCard)
		v1.POST("/checkout/pay", h.pay)
		v1.POST("/checkout/reset", h.resetCheckout)

		v1.GET("/orders", h.listOrders)
		v1.DELETE("/orders", h.clearOrders)
	}
}

// sessionID scopes cart, checkout and order state to the caller
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	return "default"
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

func (h *Handler) listProducts(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		products, err := h.catalog.GetProductsByCategory(c.Request.Context(), category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
		return
	}

	products, err := h.catalog.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProductByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) searchProducts(c *gin.Context) {
	products, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.cart.GetCart(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, err := h.cart.AddToCart(c.Request.Context(), sessionID(c), req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Failed to add to cart", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateCartItemRequest struct {
	// JSON numbers arrive as float64; the ledger truncates toward zero.
	Quantity float64 `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, err := h.cart.UpdateQuantity(c.Request.Context(), sessionID(c), id, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	cart, err := h.cart.RemoveFromCart(c.Request.Context(), sessionID(c), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cart.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart", "details": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getMiniCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.miniCart.State(sessionID(c))})
}

type openMiniCartRequest struct {
	Expanded bool `json:"expanded"`
}

func (h *Handler) openMiniCart(c *gin.Context) {
	var req openMiniCartRequest
	_ = c.ShouldBindJSON(&req)

	sid := sessionID(c)
	if req.Expanded {
		h.miniCart.OpenExpanded(sid)
	} else {
		h.miniCart.OpenMini(sid)
	}
	c.JSON(http.StatusOK, gin.H{"state": h.miniCart.State(sid)})
}

func (h *Handler) expandMiniCart(c *gin.Context) {
	sid := sessionID(c)
	h.miniCart.Expand(sid)
	c.JSON(http.StatusOK, gin.H{"state": h.miniCart.State(sid)})
}

func (h *Handler) closeMiniCart(c *gin.Context) {
	sid := sessionID(c)
	h.miniCart.Close(sid)
	c.JSON(http.StatusOK, gin.H{"state": h.miniCart.State(sid)})
}

func (h *Handler) getCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.View(sessionID(c)))
}

func (h *Handler) setCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer", "details": err.Error()})
		return
	}

	h.checkout.SetCustomer(sessionID(c), &customer)
	c.JSON(http.StatusOK, h.checkout.View(sessionID(c)))
}

type selectPaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

func (h *Handler) selectPaymentMethod(c *gin.Context) {
	var req selectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	h.checkout.SelectPaymentMethod(sessionID(c), &models.PaymentMethod{Method: req.Method})
	c.JSON(http.StatusOK, h.checkout.View(sessionID(c)))
}

func (h *Handler) attachCard(c *gin.Context) {
	var input service.CardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card input", "details": err.Error()})
		return
	}

	h.checkout.AttachCardForm(sessionID(c), h.tokenizer.NewForm(input))
	c.JSON(http.StatusOK, gin.H{"mode": h.tokenizer.ModeName()})
}

func (h *Handler) resetCheckout(c *gin.Context) {
	h.checkout.Reset(sessionID(c))
	c.Status(http.StatusNoContent)
}

// pay runs a checkout attempt and, on success, finalizes it: completes the
// checkout with the payment backend, persists the order, clears the cart and
// raises the confirmation banner. The orchestrator itself does none of this,
// so a failed finalization can be retried without re-charging.
func (h *Handler) pay(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	cart, err := h.cart.GetCart(ctx, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart", "details": err.Error()})
		return
	}
	if cart.Count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	res := h.checkout.HandlePayment(ctx, sid, cart.TotalPrice)
	if !res.OK {
		body := gin.H{"ok": false, "reason": res.Reason}
		if res.Err != nil {
			body["details"] = res.Err.Error()
		}
		if res.PaymentIntent != nil {
			body["payment_status"] = res.PaymentIntent.Status
		}
		if res.RequiresAction() {
			body["requires_action"] = true
		}
		c.JSON(failureStatus(res.Reason), body)
		return
	}

	completion, err := h.gateway.CompleteCheckout(ctx, res.Payload)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "reason": service.ReasonException, "details": err.Error()})
		return
	}
	if !completion.Success {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "reason": service.ReasonPaymentIncomplete})
		return
	}

	orderID := completion.OrderID
	if orderID == "" {
		orderID = "unknown"
	}

	order, err := h.orders.PersistOrder(ctx, sid, orderID, cart.Items, cart.TotalPrice)
	if err != nil {
		// the payment went through; losing the local history entry must not
		// fail the request
		h.logger.Error("Failed to persist order after successful checkout",
			zap.String("session_id", sid),
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	if err := h.cart.ClearCart(ctx, sid); err != nil {
		h.logger.Error("Failed to clear cart after checkout", zap.Error(err))
	}
	h.orders.TriggerSuccess(sid)
	h.publishOrderRecorded(ctx, sid, order)

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"order_id":       orderID,
		"payment_intent": res.PaymentIntent,
	})
}

func (h *Handler) publishOrderRecorded(ctx context.Context, sid string, order *models.Order) {
	if h.publisher == nil || order == nil {
		return
	}
	event := &models.OrderRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderRecorded,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		SessionID: sid,
		Total:     order.Total,
		Items:     order.Items,
	}
	if err := h.publisher.PublishOrderRecorded(ctx, event); err != nil {
		h.logger.Error("Failed to publish OrderRecorded event", zap.Error(err))
	}
}

func (h *Handler) listOrders(c *gin.Context) {
	sid := sessionID(c)
	orders, err := h.orders.LoadOrders(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":       orders,
		"show_success": h.orders.ShowSuccess(sid),
	})
}

func (h *Handler) clearOrders(c *gin.Context) {
	if err := h.orders.ClearOrders(c.Request.Context(), sessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear orders", "details": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// failureStatus maps checkout failure reasons to HTTP statuses. Every
// failure is retryable by re-invoking the pay endpoint.
func failureStatus(reason service.FailureReason) int {
	switch reason {
	case service.ReasonNotReady, service.ReasonInvalidCardForm:
		return http.StatusBadRequest
	case service.ReasonTokenizationFailed, service.ReasonMissingClientSecret,
		service.ReasonPaymentIncomplete, service.ReasonPaymentNotSucceeded:
		return http.StatusPaymentRequired
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
