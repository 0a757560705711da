package workflow

import (
	"testing"

	"resto-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kotOrder() *models.Order {
	return &models.Order{
		OrderNumber: "ORD-000042",
		KOTNumber:   "KOT-000042",
		OrderType:   models.OrderTypeDineIn,
		Note:        "birthday table",
		Items: []models.OrderItem{
			{Name: "Margherita", Category: "Pizza", Quantity: 2},
			{Name: "Cola", Category: "Drinks", Quantity: 3, Note: "no ice"},
			{Name: "Pepperoni", Category: "Pizza", Quantity: 1},
			{Name: "Tiramisu", Category: "", Quantity: 1},
		},
	}
}

func TestBuildTicket_GroupsByFirstOccurrence(t *testing.T) {
	t.Parallel()

	table := &models.Table{TableNumber: 12}
	ticket := BuildTicket(kotOrder(), table, "Judy")

	assert.Equal(t, "KOT-000042", ticket.KOTNumber)
	assert.Equal(t, "ORD-000042", ticket.OrderNumber)
	assert.Equal(t, "Table 12", ticket.Banner)
	assert.Equal(t, "Judy", ticket.PreparedBy)
	assert.Equal(t, "birthday table", ticket.OrderNote)
	assert.Equal(t, 7, ticket.TotalItems, "total counts quantities, not lines")

	// Categories appear in order of first occurrence; the blank one gets a
	// fallback name.
	require.Len(t, ticket.Groups, 3)
	assert.Equal(t, "Pizza", ticket.Groups[0].Category)
	assert.Equal(t, "Drinks", ticket.Groups[1].Category)
	assert.Equal(t, "Uncategorized", ticket.Groups[2].Category)

	// Pizza collects both pizza lines, in insertion order.
	require.Len(t, ticket.Groups[0].Lines, 2)
	assert.Equal(t, "Margherita", ticket.Groups[0].Lines[0].Name)
	assert.Equal(t, "Pepperoni", ticket.Groups[0].Lines[1].Name)

	assert.Equal(t, "no ice", ticket.Groups[1].Lines[0].Note)
}

func TestBuildTicket_ServiceBanners(t *testing.T) {
	t.Parallel()

	order := kotOrder()

	order.OrderType = models.OrderTypeTakeaway
	order.CustomerName = "Alice"
	assert.Equal(t, "Takeaway - Alice", BuildTicket(order, nil, "").Banner)

	order.OrderType = models.OrderTypeDelivery
	order.CustomerName = "Bob"
	assert.Equal(t, "Delivery - Bob", BuildTicket(order, nil, "").Banner)

	order.OrderType = models.OrderTypeDineIn
	assert.Equal(t, "Dine-in", BuildTicket(order, nil, "").Banner,
		"missing table snapshot falls back to a generic banner")
}

func TestBuildTicket_DoesNotMutateOrder(t *testing.T) {
	t.Parallel()

	order := kotOrder()
	before := len(order.Items)

	_ = BuildTicket(order, nil, "")
	_ = BuildTicket(order, nil, "")

	assert.Len(t, order.Items, before)
	assert.False(t, order.KOTPrinted)
}

func TestEngineTicket_LoadsSnapshot(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	table := seedTable(t, db, 12)
	e := NewEngine(db, nil, nil)

	order := dineInOrder(t, e, table.ID)

	ticket, err := e.Ticket(order.ID, "Ken")
	require.NoError(t, err)
	assert.Equal(t, order.KOTNumber, ticket.KOTNumber)
	assert.Equal(t, "Table 12", ticket.Banner)
	assert.Equal(t, 3, ticket.TotalItems)
}
