package workflow

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"resto-pos/internal/models"

	"gorm.io/gorm"
)

// OrderEvent is the advisory payload handed to the notification collaborator.
type OrderEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OrderType   string `json:"order_type"`
	Status      string `json:"status"`
	TableID     *uint  `json:"table_id,omitempty"`
	PlaySound   bool   `json:"play_sound"`
}

// Notifier receives advisory events. Calls are fire-and-forget; the engine
// never waits on them and never fails a transition because of them.
type Notifier interface {
	OrderCreated(ev OrderEvent)
	OrderReady(ev OrderEvent)
}

// TicketPrinter accepts a kitchen ticket for printing. A failure is reported
// separately from the order state, which has already committed.
type TicketPrinter interface {
	PrintTicket(t Ticket) error
}

// Engine orchestrates order status transitions and the side effects that
// hang off them: table occupancy, sequential numbering, payment gates,
// KOT printing and notifications. All order mutation goes through here.
type Engine struct {
	db       *gorm.DB
	notifier Notifier
	printer  TicketPrinter

	locks sync.Map // order id -> *sync.Mutex
}

// NewEngine wires the engine to its collaborators. Notifier and printer may
// be nil; the matching side effects are then skipped.
func NewEngine(db *gorm.DB, notifier Notifier, printer TicketPrinter) *Engine {
	return &Engine{db: db, notifier: notifier, printer: printer}
}

// lockOrder serializes in-process mutations per order. Cross-process races
// are caught by the compare-and-swap status writes below.
func (e *Engine) lockOrder(orderID uint) func() {
	v, _ := e.locks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateOrderItemInput is one requested line; price and name are snapshotted
// from the menu inside the creation transaction.
type CreateOrderItemInput struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Note       string `json:"note"`
}

// CreateOrderPaymentInput is inline settlement supplied with the order,
// required when the pay-first policy is on.
type CreateOrderPaymentInput struct {
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	SplitNumber *int    `json:"split_number,omitempty"`
}

// CreateOrderInput carries everything needed to open an order.
type CreateOrderInput struct {
	OrderType    string                    `json:"order_type"`
	TableID      *uint                     `json:"table_id,omitempty"`
	CustomerName string                    `json:"customer_name,omitempty"`
	Phone        string                    `json:"phone,omitempty"`
	Address      string                    `json:"address,omitempty"`
	Note         string                    `json:"note,omitempty"`
	Items        []CreateOrderItemInput    `json:"items"`
	Payments     []CreateOrderPaymentInput `json:"payments,omitempty"`
	CreatedBy    uint                      `json:"-"`
}

// CreateOrder validates the intent, snapshots prices, assigns sequential
// order/KOT numbers and persists the order atomically with its table-occupancy
// side effect. Post-commit it fires the kitchen notification and, when
// configured, the automatic KOT print.
func (e *Engine) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	cfg, err := CurrentSettings(e.db)
	if err != nil {
		return nil, err
	}

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item quantity must be at least 1", ErrValidation)
		}
	}
	switch in.OrderType {
	case models.OrderTypeDineIn:
		if in.TableID == nil {
			return nil, fmt.Errorf("%w: dine-in order needs a table", ErrValidation)
		}
	case models.OrderTypeTakeaway:
		if in.CustomerName == "" {
			return nil, fmt.Errorf("%w: takeaway order needs a customer name", ErrValidation)
		}
	case models.OrderTypeDelivery:
		if in.CustomerName == "" {
			return nil, fmt.Errorf("%w: delivery order needs a customer name", ErrValidation)
		}
		if in.Address == "" {
			return nil, fmt.Errorf("%w: delivery order needs an address", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown order type %q", ErrValidation, in.OrderType)
	}

	var order models.Order

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if in.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *in.TableID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: table %d", ErrInvalidTable, *in.TableID)
				}
				return err
			}
			switch table.Status {
			case models.TableAvailable:
			case models.TableOccupied:
				if !cfg.AllowMultipleOrdersPerTable {
					return fmt.Errorf("%w: table %d is occupied", ErrTableUnavailable, table.TableNumber)
				}
			default:
				return fmt.Errorf("%w: table %d is %s", ErrTableUnavailable, table.TableNumber, table.Status)
			}
		}

		var total float64
		var items []models.OrderItem
		for _, it := range in.Items {
			var menu models.MenuItem
			if err := tx.First(&menu, it.MenuItemID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: menu item %d", ErrNotFound, it.MenuItemID)
				}
				return err
			}
			total += menu.Price * float64(it.Quantity)
			items = append(items, models.OrderItem{
				MenuItemID: menu.ID,
				Name:       menu.Name,
				Category:   menu.Category,
				Price:      menu.Price,
				Quantity:   it.Quantity,
				Note:       it.Note,
			})
		}

		var payments []models.Payment
		var paid float64
		for _, p := range in.Payments {
			if p.Amount <= 0 {
				return fmt.Errorf("%w: %.2f", ErrInvalidAmount, p.Amount)
			}
			if !validPaymentMethod(p.Method) {
				return fmt.Errorf("%w: unknown payment method %q", ErrValidation, p.Method)
			}
			if p.SplitNumber != nil && !cfg.AllowSplitPayment {
				return fmt.Errorf("%w: split payment is disabled", ErrValidation)
			}
			paid += p.Amount
			payments = append(payments, models.Payment{
				Amount:      p.Amount,
				Method:      p.Method,
				SplitNumber: p.SplitNumber,
				ReceivedBy:  in.CreatedBy,
			})
		}
		if cfg.RequirePaymentAtOrder && paid < total {
			return &PaymentRequiredError{Remaining: total - paid}
		}

		orderSeq, err := nextNumber(tx, "order")
		if err != nil {
			return err
		}
		kotSeq, err := nextNumber(tx, "kot")
		if err != nil {
			return err
		}

		status := models.StatusPending
		if cfg.AutoStartPreparing && CanTransition(cfg.StatusFlow, status, models.StatusPreparing) {
			status = models.StatusPreparing
		}

		order = models.Order{
			OrderNumber:  fmt.Sprintf("ORD-%06d", orderSeq),
			KOTNumber:    fmt.Sprintf("KOT-%06d", kotSeq),
			OrderType:    in.OrderType,
			Status:       status,
			Total:        total,
			TableID:      in.TableID,
			CustomerName: in.CustomerName,
			Phone:        in.Phone,
			Address:      in.Address,
			Note:         in.Note,
			CreatedBy:    in.CreatedBy,
			Items:        items,
			Payments:     payments,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if cfg.AutoOccupyTableOnOrder && in.TableID != nil {
			if err := tx.Model(&models.Table{}).
				Where("id = ?", *in.TableID).
				Update("status", models.TableOccupied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Collaborator side effects fire after commit and never roll it back.
	if e.notifier != nil && cfg.NotifyKitchenOnNewOrder {
		ev := OrderEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OrderType:   order.OrderType,
			Status:      order.Status,
			TableID:     order.TableID,
			PlaySound:   cfg.PlayOrderSound,
		}
		go e.notifier.OrderCreated(ev)
	}
	if e.printer != nil && cfg.AutoPrintKOT && !cfg.RequireKOTPrintConfirm {
		go e.autoPrintKOT(order.ID, cfg.KOTPrintDelaySeconds)
	}

	return e.GetOrder(order.ID)
}

// autoPrintKOT prints an order's ticket after the configured delay and marks
// it printed on success. Runs detached from the request that created the order.
func (e *Engine) autoPrintKOT(orderID uint, delaySeconds int) {
	if delaySeconds > 0 {
		time.Sleep(time.Duration(delaySeconds) * time.Second)
	}
	ticket, err := e.Ticket(orderID, "")
	if err != nil {
		log.Printf("auto KOT: order %d: %v", orderID, err)
		return
	}
	if err := e.printer.PrintTicket(ticket); err != nil {
		log.Printf("auto KOT: print failed for order %d: %v", orderID, err)
		return
	}
	if _, err := e.MarkKOTPrinted(orderID); err != nil {
		log.Printf("auto KOT: mark printed for order %d: %v", orderID, err)
	}
}

// TransitionStatus moves an order to the requested status if the active flow
// permits it. Entering served may be gated on full payment; entering
// completed always is. A lost write race is retried once, then surfaced as
// ErrConcurrencyConflict.
func (e *Engine) TransitionStatus(orderID uint, requested string) (*models.Order, error) {
	unlock := e.lockOrder(orderID)
	defer unlock()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = e.transitionOnce(orderID, requested)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrencyConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	order, err := e.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	// Terminal orders take no further mutations; drop their serializer entry
	// so the map does not grow with the order history. Stragglers still
	// holding the old mutex are caught by the compare-and-swap write.
	if !order.Active() {
		e.locks.Delete(orderID)
	}

	if requested == models.StatusReady && e.notifier != nil {
		if cfg, cerr := CurrentSettings(e.db); cerr == nil && cfg.NotifyWaiterOnReady {
			ev := OrderEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				OrderType:   order.OrderType,
				Status:      order.Status,
				TableID:     order.TableID,
				PlaySound:   cfg.PlayOrderSound,
			}
			go e.notifier.OrderReady(ev)
		}
	}
	return order, nil
}

func (e *Engine) transitionOnce(orderID uint, requested string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := CurrentSettings(tx)
		if err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		allowed := NextStatuses(cfg.StatusFlow, order.Status)
		if !contains(allowed, requested) {
			return &IllegalTransitionError{From: order.Status, Requested: requested, Allowed: allowed}
		}

		if requested == models.StatusServed && cfg.RequirePaymentForServed {
			paid, err := paidToDate(tx, order.ID)
			if err != nil {
				return err
			}
			if paid < order.Total {
				return &PaymentRequiredError{Remaining: order.Total - paid}
			}
		}
		// Payment is what completes an order's financial lifecycle,
		// independent of configuration.
		if requested == models.StatusCompleted {
			paid, err := paidToDate(tx, order.ID)
			if err != nil {
				return err
			}
			if paid < order.Total {
				return &PaymentRequiredError{Remaining: order.Total - paid}
			}
		}

		if err := casStatus(tx, order.ID, order.Status, requested); err != nil {
			return err
		}

		// Table release shares the transaction so the order can never
		// commit against a table whose status disagrees with it.
		if requested == models.StatusCompleted && cfg.AutoFreeTableOnPayment && order.TableID != nil {
			if err := freeIfVacated(tx, *order.TableID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ToggleItemPrepared records the prepared flag on one line. The flag itself
// is always accepted and idempotent. When item-wise preparing is enabled and
// this was the last unprepared item, the order auto-advances to served,
// provided the active flow ever reaches served from here and the payment
// gate does not object; a blocked auto-advance is skipped, not failed.
func (e *Engine) ToggleItemPrepared(itemID uint, prepared bool) (*models.OrderItem, error) {
	var probe models.OrderItem
	if err := e.db.First(&probe, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
		}
		return nil, err
	}

	unlock := e.lockOrder(probe.OrderID)
	defer unlock()

	var item models.OrderItem

	err := e.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := CurrentSettings(tx)
		if err != nil {
			return err
		}

		if err := tx.First(&item, itemID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
			}
			return err
		}
		if item.Prepared != prepared {
			item.Prepared = prepared
			if err := tx.Model(&models.OrderItem{}).
				Where("id = ?", item.ID).
				Update("prepared", prepared).Error; err != nil {
				return err
			}
		}
		if !prepared || !cfg.EnableItemWisePreparing {
			return nil
		}

		var order models.Order
		if err := tx.Preload("Items").First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if !order.Active() || order.Status == models.StatusServed {
			return nil
		}
		for _, it := range order.Items {
			if it.ID != item.ID && !it.Prepared {
				return nil
			}
		}
		if !CanReach(cfg.StatusFlow, order.Status, models.StatusServed) {
			return nil
		}
		if cfg.RequirePaymentForServed {
			paid, err := paidToDate(tx, order.ID)
			if err != nil {
				return err
			}
			if paid < order.Total {
				return nil
			}
		}
		return casStatus(tx, order.ID, order.Status, models.StatusServed)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordPayment appends to the order's settlement ledger and applies the
// paid-in-full policies: auto-serve (when legal) and table auto-free.
func (e *Engine) RecordPayment(orderID uint, amount float64, method string, splitNumber *int, receivedBy uint) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrInvalidAmount, amount)
	}
	if !validPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	unlock := e.lockOrder(orderID)
	defer unlock()

	var payment models.Payment

	err := e.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := CurrentSettings(tx)
		if err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if !order.Active() {
			return fmt.Errorf("%w: order %s is %s", ErrValidation, order.OrderNumber, order.Status)
		}
		if splitNumber != nil && !cfg.AllowSplitPayment {
			return fmt.Errorf("%w: split payment is disabled", ErrValidation)
		}

		paid, err := paidToDate(tx, order.ID)
		if err != nil {
			return err
		}
		remaining := order.Total - paid

		// A sole non-split payment must cover the remainder when partial
		// payment is disabled; split parts may accumulate.
		if !cfg.AllowPartialPayment && splitNumber == nil && amount < remaining {
			return fmt.Errorf("%w: %.2f does not cover remaining %.2f", ErrPartialPaymentNotAllowed, amount, remaining)
		}

		payment = models.Payment{
			OrderID:     order.ID,
			Amount:      amount,
			Method:      method,
			SplitNumber: splitNumber,
			ReceivedBy:  receivedBy,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if paid+amount < order.Total {
			return nil
		}

		// Paid in full: the order is now eligible for completion, and the
		// paid-in-full policies kick in.
		if cfg.AutoMarkServedWhenPaid &&
			order.Status != models.StatusServed &&
			CanTransition(cfg.StatusFlow, order.Status, models.StatusServed) {
			if err := casStatus(tx, order.ID, order.Status, models.StatusServed); err != nil {
				return err
			}
		}
		if cfg.AutoFreeTableOnPayment && order.TableID != nil {
			if err := freeIfVacated(tx, *order.TableID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Actions is the read-only projection UI collaborators render buttons from.
type Actions struct {
	Status           string   `json:"status"`
	NextStatuses     []string `json:"next_statuses"`
	CanRecordPayment bool     `json:"can_record_payment"`
	CanToggleItems   bool     `json:"can_toggle_items"`
	AmountRemaining  float64  `json:"amount_remaining"`
}

// AllowedActions reports what a caller may do with an order right now.
// Statuses whose payment gate cannot currently pass are filtered out, so the
// UI offers only transitions the engine would accept. Never mutates state.
func (e *Engine) AllowedActions(orderID uint) (*Actions, error) {
	cfg, err := CurrentSettings(e.db)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := e.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	paid, err := paidToDate(e.db, order.ID)
	if err != nil {
		return nil, err
	}
	remaining := order.Total - paid
	if remaining < 0 {
		remaining = 0
	}

	var next []string
	for _, s := range NextStatuses(cfg.StatusFlow, order.Status) {
		if s == models.StatusServed && cfg.RequirePaymentForServed && remaining > 0 {
			continue
		}
		if s == models.StatusCompleted && remaining > 0 {
			continue
		}
		next = append(next, s)
	}

	return &Actions{
		Status:           order.Status,
		NextStatuses:     next,
		CanRecordPayment: order.Active() && remaining > 0,
		CanToggleItems:   cfg.EnableItemWisePreparing && order.Active(),
		AmountRemaining:  remaining,
	}, nil
}

// Ticket loads an order snapshot and derives its kitchen ticket.
func (e *Engine) Ticket(orderID uint, preparedBy string) (Ticket, error) {
	order, err := e.GetOrder(orderID)
	if err != nil {
		return Ticket{}, err
	}
	var table *models.Table
	if order.TableID != nil {
		var t models.Table
		if err := e.db.First(&t, *order.TableID).Error; err == nil {
			table = &t
		}
	}
	return BuildTicket(order, table, preparedBy), nil
}

// MarkKOTPrinted records a successful print (or an explicit manual
// confirmation) back onto the order.
func (e *Engine) MarkKOTPrinted(orderID uint) (*models.Order, error) {
	now := time.Now()
	res := e.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"kot_printed": true, "kot_printed_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return e.GetOrder(orderID)
}

// GetOrder loads an order with its items and payments.
func (e *Engine) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := e.db.Preload("Items").Preload("Payments").First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

// PaidToDate exposes the ledger sum for an order.
func (e *Engine) PaidToDate(orderID uint) (float64, error) {
	return paidToDate(e.db, orderID)
}

// --- shared helpers ---

// casStatus performs the atomic "read current status, write new status"
// write. A zero row count means someone else moved the order first.
func casStatus(tx *gorm.DB, orderID uint, from, to string) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.MethodCash, models.MethodCard, models.MethodUPI, models.MethodOther:
		return true
	}
	return false
}

func paidToDate(tx *gorm.DB, orderID uint) (float64, error) {
	var paid float64
	err := tx.Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	return paid, err
}

// freeIfVacated frees a table unless another active order still sits on it.
// The order identified by excludeOrderID is treated as released regardless
// of its status (it is the one whose payment or completion triggered this).
func freeIfVacated(tx *gorm.DB, tableID, excludeOrderID uint) error {
	var active int64
	err := tx.Model(&models.Order{}).
		Where("table_id = ? AND id <> ? AND status NOT IN ?",
			tableID, excludeOrderID,
			[]string{models.StatusCompleted, models.StatusCancelled}).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return nil
	}
	return freeTable(tx, tableID)
}

// nextNumber bumps and returns the named monotonic counter inside the
// caller's transaction, so the sequence commits or rolls back with the order.
func nextNumber(tx *gorm.DB, name string) (int64, error) {
	c := models.Counter{Name: name}
	if err := tx.FirstOrCreate(&c, models.Counter{Name: name}).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}
	var out models.Counter
	if err := tx.First(&out, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return out.Value, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
