package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/utils"
)

type OrderHandler struct {
	Service   *service.OrderService
	Validator *validator.Validate
}

func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		Service:   s,
		Validator: utils.GetValidator(),
	}
}

func formatValidationError(err error) map[string]string {
	errs := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			errs[e.Field()] = "failed on tag '" + e.Tag() + "'"
		}
	}
	return errs
}

// statusForError maps domain sentinels to HTTP codes. Anything unmapped is
// an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrBondNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotOrderOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPriceRequired),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrBondInactive):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInsufficientHoldings),
		errors.Is(err, models.ErrNoLiquidity),
		errors.Is(err, models.ErrOrderNotCancellable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Service.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DELETE /orders/:id
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req models.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	resp, err := h.Service.CancelOrder(c.Request.Context(), orderID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /orders/:id
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	resp, err := h.Service.GetOrderStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /orders?user_id=xxx
func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'user_id' query parameter"})
		return
	}

	orders, err := h.Service.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /orderbook?bond_id=xxx
func (h *OrderHandler) GetOrderBook(c *gin.Context) {
	bondID := c.Query("bond_id")
	if bondID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'bond_id' query parameter"})
		return
	}

	resp, err := h.Service.GetOrderBook(c.Request.Context(), bondID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /trades?bond_id=xxx&user_id=yyy
func (h *OrderHandler) ListTrades(c *gin.Context) {
	if userID := c.Query("user_id"); userID != "" {
		trades, err := h.Service.ListUserTrades(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trades": trades})
		return
	}

	trades, err := h.Service.ListTrades(c.Request.Context(), c.Query("bond_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// GET /bonds
func (h *OrderHandler) ListBonds(c *gin.Context) {
	bonds, err := h.Service.ListBonds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bonds": bonds})
}

// GET /bonds/:id
func (h *OrderHandler) GetBond(c *gin.Context) {
	bond, err := h.Service.GetBond(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bond)
}

// POST /bonds
func (h *OrderHandler) CreateBond(c *gin.Context) {
	var req models.CreateBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	bond, err := h.Service.CreateBond(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bond)
}

// POST /users
func (h *OrderHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	user, err := h.Service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GET /portfolio/:userId
func (h *OrderHandler) GetPortfolio(c *gin.Context) {
	resp, err := h.Service.GetPortfolio(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
