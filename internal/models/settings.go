package models

import "time"

// Service modes
const (
	ModeFullService  = "full_service"
	ModeQuickService = "quick_service"
	ModeCustom       = "custom"
)

// Status flow templates
const (
	FlowPendingPreparingServedCompleted = "pending_preparing_served_completed"
	FlowPendingReadyServedCompleted     = "pending_ready_served_completed"
	FlowPendingCompleted                = "pending_completed"
	FlowCustom                          = "custom"
)

// WorkflowSettings - The single active configuration row. Exactly one
// instance exists; absence means "apply defaults", never an error.
// Read it through workflow.CurrentSettings, not directly.
type WorkflowSettings struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Mode string `json:"mode"` // 'full_service', 'quick_service', 'custom'

	StatusFlow string `json:"status_flow"`

	RequirePaymentAtOrder       bool `json:"require_payment_at_order"`
	AutoMarkServedWhenPaid      bool `json:"auto_mark_served_when_paid"`
	AutoPrintKOT                bool `json:"auto_print_kot"`
	RequireKOTPrintConfirm      bool `json:"require_kot_print_confirmation"`
	KOTPrintDelaySeconds        int  `json:"kot_print_delay_seconds"` // 0-60
	AutoStartPreparing          bool `json:"auto_start_preparing"`
	EnableItemWisePreparing     bool `json:"enable_item_wise_preparing"`
	AllowPartialPayment         bool `json:"allow_partial_payment"`
	AllowSplitPayment           bool `json:"allow_split_payment"`
	RequirePaymentForServed     bool `json:"require_payment_for_served"`
	AutoOccupyTableOnOrder      bool `json:"auto_occupy_table_on_order"`
	AutoFreeTableOnPayment      bool `json:"auto_free_table_on_payment"`
	AllowMultipleOrdersPerTable bool `json:"allow_multiple_orders_per_table"`

	// Advisory flags for the notification collaborators. The engine gates
	// events on them but never enforces anything with them.
	NotifyKitchenOnNewOrder bool `json:"notify_kitchen_on_new_order"`
	NotifyWaiterOnReady     bool `json:"notify_waiter_on_ready"`
	PlayOrderSound          bool `json:"play_order_sound"`

	UpdatedAt time.Time `json:"updated_at"`
}
