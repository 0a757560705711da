package models

import (
	"time"
)

// User - The staff member interacting with the terminals
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"` // 'admin', 'cashier', 'waiter'
	CreatedAt    time.Time `json:"created_at"`
}

// MenuItem - What the restaurant sells
type MenuItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Available bool    `gorm:"default:true" json:"available"`
	ImageURL  string  `json:"image_url"`
}

// Order status values. Which subset is reachable depends on the configured flow.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order types
const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

// Payment methods
const (
	MethodCash  = "cash"
	MethodCard  = "card"
	MethodUPI   = "upi"
	MethodOther = "other"
)

// Table status values
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Order - The transaction header. Mutated only through the workflow engine.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	OrderNumber  string      `gorm:"uniqueIndex;size:20" json:"order_number"`
	KOTNumber    string      `gorm:"size:20" json:"kot_number"`
	OrderType    string      `json:"order_type"` // 'dine_in', 'takeaway', 'delivery'
	Status       string      `gorm:"index" json:"status"`
	Total        float64     `json:"total"`
	TableID      *uint       `gorm:"index" json:"table_id,omitempty"`
	CustomerName string      `json:"customer_name,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Address      string      `json:"address,omitempty"`
	Note         string      `json:"note,omitempty"`
	KOTPrinted   bool        `json:"kot_printed"`
	KOTPrintedAt *time.Time  `json:"kot_printed_at,omitempty"`
	CreatedBy    uint        `json:"created_by"` // Who took the order
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Payments     []Payment   `gorm:"foreignKey:OrderID" json:"payments"`
}

// Active reports whether the order still holds resources (table, kitchen).
func (o *Order) Active() bool {
	return o.Status != StatusCompleted && o.Status != StatusCancelled
}

// OrderItem - One line of an order. Name, category and price are snapshots
// taken at order time so later menu edits never change past orders.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"index" json:"order_id"`
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Note       string  `json:"note,omitempty"`
	Prepared   bool    `json:"prepared"`
}

// Subtotal is the line total for this item.
func (i *OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Payment - One settlement record. Append-only, never edited or deleted.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"index" json:"order_id"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"` // 'cash', 'card', 'upi', 'other'
	SplitNumber *int      `json:"split_number,omitempty"`
	ReceivedBy  uint      `json:"received_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Table - A physical table. Status changes only as a side effect of order
// creation/payment or an explicit clear, never edited directly while an
// active order references it.
type Table struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableNumber   int        `gorm:"uniqueIndex" json:"table_number"`
	Capacity      int        `json:"capacity"`
	Status        string     `json:"status"` // 'available', 'occupied', 'reserved'
	ReservedName  string     `json:"reserved_name,omitempty"`
	ReservedPhone string     `json:"reserved_phone,omitempty"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
}

// Counter - Monotonic sequence source for order and KOT numbers.
// Incremented inside the same transaction as the order insert so numbers
// are never duplicated or reused under concurrent creation.
type Counter struct {
	Name  string `gorm:"primaryKey;size:30"`
	Value int64
}
