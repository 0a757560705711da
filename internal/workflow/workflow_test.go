package workflow

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"resto-pos/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// testDB opens a fresh in-memory database per test. The shared-cache name
// keeps every pooled connection on the same database.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:wf_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.WorkflowSettings{},
		&models.Counter{},
	))
	return db
}

// withSettings persists a configuration derived from the defaults.
func withSettings(t *testing.T, db *gorm.DB, mutate func(*models.WorkflowSettings)) {
	t.Helper()

	s := DefaultSettings()
	if mutate != nil {
		mutate(&s)
	}
	require.NoError(t, db.Create(&s).Error)
}

// seedMenu inserts a small menu and returns it ordered as inserted.
func seedMenu(t *testing.T, db *gorm.DB) []models.MenuItem {
	t.Helper()

	items := []models.MenuItem{
		{Name: "Margherita", Price: 250, Category: "Pizza", Available: true},
		{Name: "Pepperoni", Price: 320, Category: "Pizza", Available: true},
		{Name: "Cola", Price: 50, Category: "Drinks", Available: true},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return items
}

func seedTable(t *testing.T, db *gorm.DB, number int) *models.Table {
	t.Helper()

	table := models.Table{TableNumber: number, Capacity: 4, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	return &table
}

func tableStatus(t *testing.T, db *gorm.DB, tableID uint) string {
	t.Helper()

	var table models.Table
	require.NoError(t, db.First(&table, tableID).Error)
	return table.Status
}

func forceStatus(t *testing.T, db *gorm.DB, orderID uint, status string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

// dineInOrder creates a basic two-line dine-in order on the given table.
func dineInOrder(t *testing.T, e *Engine, tableID uint) *models.Order {
	t.Helper()

	order, err := e.CreateOrder(CreateOrderInput{
		OrderType: models.OrderTypeDineIn,
		TableID:   &tableID,
		Items: []CreateOrderItemInput{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 3, Quantity: 1, Note: "no ice"},
		},
	})
	require.NoError(t, err)
	return order
}

func takeawayOrder(t *testing.T, e *Engine) *models.Order {
	t.Helper()

	order, err := e.CreateOrder(CreateOrderInput{
		OrderType:    models.OrderTypeTakeaway,
		CustomerName: "Alice",
		Items:        []CreateOrderItemInput{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	return order
}

// recordingPrinter captures tickets for assertions.
type recordingPrinter struct {
	tickets chan Ticket
}

func newRecordingPrinter() *recordingPrinter {
	return &recordingPrinter{tickets: make(chan Ticket, 8)}
}

func (p *recordingPrinter) PrintTicket(ticket Ticket) error {
	p.tickets <- ticket
	return nil
}

func (p *recordingPrinter) wait(t *testing.T) Ticket {
	t.Helper()
	select {
	case ticket := <-p.tickets:
		return ticket
	case <-time.After(2 * time.Second):
		t.Fatal("no ticket printed")
		return Ticket{}
	}
}

// recordingNotifier captures advisory events.
type recordingNotifier struct {
	created chan OrderEvent
	ready   chan OrderEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		created: make(chan OrderEvent, 8),
		ready:   make(chan OrderEvent, 8),
	}
}

func (n *recordingNotifier) OrderCreated(ev OrderEvent) { n.created <- ev }
func (n *recordingNotifier) OrderReady(ev OrderEvent)   { n.ready <- ev }
