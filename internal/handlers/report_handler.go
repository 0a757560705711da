package handlers

import (
	"net/http"

	"resto-pos/internal/database"
	"resto-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
	TopSelling   []struct {
		ItemName string  `json:"item_name"`
		Sold     int     `json:"sold"`
		Revenue  float64 `json:"revenue"`
	} `json:"top_selling"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// --- GET: /api/reports ---
func GetSalesReport(c *gin.Context) {
	var data ReportData

	// 1. All-time revenue from the payments ledger
	err := database.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 2. Order count, cancellations excluded
	err = database.DB.Model(&models.Order{}).
		Where("status <> ?", models.StatusCancelled).
		Count(&data.TotalOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. Top 5 best sellers from the item snapshots
	err = database.DB.Table("order_items").
		Select("order_items.name as item_name, SUM(order_items.quantity) as sold, SUM(order_items.quantity * order_items.price) as revenue").
		Joins("JOIN orders ON order_items.order_id = orders.id").
		Where("orders.status <> ?", models.StatusCancelled).
		Group("order_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// 4. Last 10 orders, newest first
	err = database.DB.Preload("Items").Preload("Payments").
		Order("created_at desc").Limit(10).Find(&data.RecentOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}

	c.JSON(http.StatusOK, data)
}
