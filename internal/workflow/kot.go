package workflow

import (
	"fmt"
	"time"

	"resto-pos/internal/models"
)

// TicketLine is one prepared row on the kitchen ticket.
type TicketLine struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Note     string `json:"note,omitempty"`
}

// TicketGroup collects a category's lines, in menu insertion order.
type TicketGroup struct {
	Category string       `json:"category"`
	Lines    []TicketLine `json:"lines"`
}

// Ticket is the printable kitchen order ticket. It is a pure projection of
// an order snapshot; building one never touches the database or the printer.
type Ticket struct {
	KOTNumber   string        `json:"kot_number"`
	OrderNumber string        `json:"order_number"`
	Banner      string        `json:"banner"` // "Table 5" or "Takeaway - Alice"
	PreparedBy  string        `json:"prepared_by,omitempty"`
	Groups      []TicketGroup `json:"groups"`
	OrderNote   string        `json:"order_note,omitempty"`
	TotalItems  int           `json:"total_items"`
	PrintedAt   time.Time     `json:"printed_at"`
}

// BuildTicket derives the kitchen ticket from an order snapshot. Items are
// grouped by category in order of first occurrence, and the total counts
// quantities, not lines.
func BuildTicket(order *models.Order, table *models.Table, preparedBy string) Ticket {
	t := Ticket{
		KOTNumber:   order.KOTNumber,
		OrderNumber: order.OrderNumber,
		Banner:      serviceBanner(order, table),
		PreparedBy:  preparedBy,
		OrderNote:   order.Note,
		PrintedAt:   time.Now(),
	}

	byCategory := make(map[string]int) // category -> index in t.Groups
	for _, item := range order.Items {
		cat := item.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		idx, ok := byCategory[cat]
		if !ok {
			idx = len(t.Groups)
			byCategory[cat] = idx
			t.Groups = append(t.Groups, TicketGroup{Category: cat})
		}
		t.Groups[idx].Lines = append(t.Groups[idx].Lines, TicketLine{
			Quantity: item.Quantity,
			Name:     item.Name,
			Note:     item.Note,
		})
		t.TotalItems += item.Quantity
	}

	return t
}

func serviceBanner(order *models.Order, table *models.Table) string {
	switch order.OrderType {
	case models.OrderTypeDineIn:
		if table != nil {
			return fmt.Sprintf("Table %d", table.TableNumber)
		}
		return "Dine-in"
	case models.OrderTypeTakeaway:
		return "Takeaway - " + order.CustomerName
	case models.OrderTypeDelivery:
		return "Delivery - " + order.CustomerName
	}
	return order.OrderType
}
