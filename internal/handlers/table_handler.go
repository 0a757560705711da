package handlers

import (
	"net/http"
	"strconv"
	"time"

	"resto-pos/internal/database"
	"resto-pos/internal/models"

	"github.com/gin-gonic/gin"
)

func tableID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID"})
		return 0, false
	}
	return uint(id), true
}

// --- GET: Floor overview ---
func ListTables(c *gin.Context) {
	tables, err := Tables.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tables"})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type AddTableRequest struct {
	TableNumber int `json:"table_number" binding:"required"`
	Capacity    int `json:"capacity"`
}

// --- POST: Add a table to the floor plan ---
func AddTable(c *gin.Context) {
	var req AddTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table_number is required"})
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Status:      models.TableAvailable,
	}
	if err := database.DB.Create(&table).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Table number likely already exists"})
		return
	}

	c.JSON(http.StatusCreated, table)
}

// --- POST: Mark a table occupied (walk-in without an order yet) ---
func OccupyTable(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	table, err := Tables.Occupy(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// --- POST: Clear a table back to available ---
func ClearTable(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	table, err := Tables.Free(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type ReserveRequest struct {
	Name  string    `json:"name" binding:"required"`
	Phone string    `json:"phone"`
	Until time.Time `json:"until" binding:"required"`
}

// --- POST: Reserve a table ---
func ReserveTable(c *gin.Context) {
	id, ok := tableID(c)
	if !ok {
		return
	}

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and until are required"})
		return
	}

	table, err := Tables.Reserve(id, req.Name, req.Phone, req.Until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type MergeRequest struct {
	SourceTableIDs []uint `json:"source_table_ids" binding:"required"`
	TargetTableID  uint   `json:"target_table_id" binding:"required"`
}

// --- POST: Merge tables, moving every active order to the target ---
func MergeTables(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_table_ids and target_table_id are required"})
		return
	}

	moved, err := Tables.Merge(req.SourceTableIDs, req.TargetTableID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moved_orders": moved})
}
