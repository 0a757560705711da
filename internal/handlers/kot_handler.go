package handlers

import (
	"log"
	"net/http"

	"resto-pos/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Printer is the print collaborator used by the manual print endpoint.
// Wired in main alongside the engine.
var Printer workflow.TicketPrinter

// --- GET: The printable KOT projection for an order ---
func GetKOT(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	ticket, err := Engine.Ticket(id, actorName(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// --- POST: Print the KOT and mark it printed on success ---
// A print failure is reported to the caller but the order itself is
// untouched; the ticket can be retried or confirmed manually.
func PrintKOT(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	ticket, err := Engine.Ticket(id, actorName(c))
	if err != nil {
		fail(c, err)
		return
	}

	if Printer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No printer configured"})
		return
	}
	if err := Printer.PrintTicket(ticket); err != nil {
		log.Println("KOT print failed:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Print failed", "detail": err.Error()})
		return
	}

	order, err := Engine.MarkKOTPrinted(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "KOT printed", "order": order})
}

// --- POST: Manual confirmation that the KOT reached the kitchen ---
// Used when require_kot_print_confirmation is on, or when the ticket was
// written out by hand after a printer failure.
func ConfirmKOT(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := Engine.MarkKOTPrinted(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "KOT confirmed", "order": order})
}
