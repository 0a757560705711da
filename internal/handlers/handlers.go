package handlers

import (
	"errors"

	"resto-pos/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Package-level collaborators, wired once at startup (mirrors the global DB
// handle in internal/database).
var (
	Engine *workflow.Engine
	Tables *workflow.TableManager
)

// Setup installs the engine and table manager the handlers delegate to.
func Setup(engine *workflow.Engine, tables *workflow.TableManager) {
	Engine = engine
	Tables = tables
}

// fail translates engine errors into JSON responses, keeping the taxonomy
// context (allowed statuses, amount remaining) visible to the UI.
func fail(c *gin.Context, err error) {
	status := workflow.HTTPStatus(err)
	payload := gin.H{"error": err.Error()}

	var illegal *workflow.IllegalTransitionError
	if errors.As(err, &illegal) {
		payload["current_status"] = illegal.From
		payload["allowed_next"] = illegal.Allowed
	}
	var due *workflow.PaymentRequiredError
	if errors.As(err, &due) {
		payload["amount_remaining"] = due.Remaining
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		status = 404
	}

	c.JSON(status, payload)
}

func actorID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func actorName(c *gin.Context) string {
	if v, ok := c.Get("userName"); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
