package workflow

import (
	"fmt"

	"resto-pos/internal/models"

	"gorm.io/gorm"
)

// DefaultSettings is the documented configuration applied when no settings
// row exists yet: a full-service dine-in restaurant with the four-stage flow.
func DefaultSettings() models.WorkflowSettings {
	return models.WorkflowSettings{
		Mode:       models.ModeFullService,
		StatusFlow: models.FlowPendingPreparingServedCompleted,

		RequirePaymentAtOrder:   false,
		AutoMarkServedWhenPaid:  false,
		AutoPrintKOT:            true,
		AutoStartPreparing:      false,
		EnableItemWisePreparing: true,
		AllowPartialPayment:     true,
		AllowSplitPayment:       true,
		RequirePaymentForServed: false,
		AutoOccupyTableOnOrder:  true,
		AutoFreeTableOnPayment:  true,

		NotifyKitchenOnNewOrder: true,
		NotifyWaiterOnReady:     true,
		PlayOrderSound:          true,
	}
}

// CurrentSettings returns the single active configuration, creating it with
// defaults on first read. This is the only place lazy initialization happens;
// everything else reads through here.
func CurrentSettings(db *gorm.DB) (*models.WorkflowSettings, error) {
	var s models.WorkflowSettings
	err := db.First(&s).Error
	if err == nil {
		return &s, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	s = DefaultSettings()
	if err := db.Create(&s).Error; err != nil {
		// Another terminal may have created the row between our read and
		// write; re-read before giving up.
		var again models.WorkflowSettings
		if rerr := db.First(&again).Error; rerr == nil {
			return &again, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpdateSettings validates and persists changes onto the singleton row.
func UpdateSettings(db *gorm.DB, in models.WorkflowSettings) (*models.WorkflowSettings, error) {
	switch in.Mode {
	case models.ModeFullService, models.ModeQuickService, models.ModeCustom:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, in.Mode)
	}
	switch in.StatusFlow {
	case models.FlowPendingPreparingServedCompleted,
		models.FlowPendingReadyServedCompleted,
		models.FlowPendingCompleted,
		models.FlowCustom:
	default:
		return nil, fmt.Errorf("%w: unknown status flow %q", ErrValidation, in.StatusFlow)
	}
	if in.KOTPrintDelaySeconds < 0 || in.KOTPrintDelaySeconds > 60 {
		return nil, fmt.Errorf("%w: kot_print_delay_seconds must be 0-60", ErrValidation)
	}

	current, err := CurrentSettings(db)
	if err != nil {
		return nil, err
	}

	in.ID = current.ID
	if err := db.Save(&in).Error; err != nil {
		return nil, err
	}
	return &in, nil
}
