package handlers

import (
	"net/http"
	"strconv"

	"resto-pos/internal/database"
	"resto-pos/internal/models"
	"resto-pos/internal/workflow"

	"github.com/gin-gonic/gin"
)

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

// --- POST: Create a new order ---
func CreateOrder(c *gin.Context) {
	var input workflow.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.CreatedBy = actorID(c)

	order, err := Engine.CreateOrder(input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// --- GET: List orders, newest first. ?active=true keeps only open ones ---
func ListOrders(c *gin.Context) {
	q := database.DB.Preload("Items").Preload("Payments").Order("created_at desc")

	if c.Query("active") == "true" {
		q = q.Where("status NOT IN ?", []string{models.StatusCompleted, models.StatusCancelled})
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Limit(200).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// --- GET: One order with items and payments ---
func GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := Engine.GetOrder(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- POST: Advance an order through its configured flow ---
func TransitionStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	order, err := Engine.TransitionStatus(id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type PaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Method      string  `json:"method" binding:"required"`
	SplitNumber *int    `json:"split_number,omitempty"`
}

// --- POST: Record a payment against an order ---
func RecordPayment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount and method are required"})
		return
	}

	payment, err := Engine.RecordPayment(id, req.Amount, req.Method, req.SplitNumber, actorID(c))
	if err != nil {
		fail(c, err)
		return
	}

	paid, _ := Engine.PaidToDate(id)
	c.JSON(http.StatusCreated, gin.H{
		"payment":      payment,
		"paid_to_date": paid,
	})
}

type PreparedRequest struct {
	Prepared *bool `json:"prepared" binding:"required"`
}

// --- POST: Flag one order item prepared / not prepared ---
func ToggleItemPrepared(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req PreparedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prepared == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prepared flag is required"})
		return
	}

	item, err := Engine.ToggleItemPrepared(uint(id), *req.Prepared)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// --- GET: What the UI may do with this order right now ---
func GetAllowedActions(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	actions, err := Engine.AllowedActions(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, actions)
}

type TransferRequest struct {
	FromTableID uint `json:"from_table_id" binding:"required"`
	ToTableID   uint `json:"to_table_id" binding:"required"`
}

// --- POST: Move an order to another table ---
func TransferOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_table_id and to_table_id are required"})
		return
	}

	if err := Tables.Transfer(id, req.FromTableID, req.ToTableID); err != nil {
		fail(c, err)
		return
	}

	order, err := Engine.GetOrder(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
