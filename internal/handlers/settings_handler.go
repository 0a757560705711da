package handlers

import (
	"net/http"

	"resto-pos/internal/database"
	"resto-pos/internal/models"
	"resto-pos/internal/workflow"

	"github.com/gin-gonic/gin"
)

// --- GET: The active workflow configuration (created with defaults on
// first read) ---
func GetSettings(c *gin.Context) {
	settings, err := workflow.CurrentSettings(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// --- PUT: Replace the workflow configuration ---
func UpdateSettings(c *gin.Context) {
	var input models.WorkflowSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	settings, err := workflow.UpdateSettings(database.DB, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
