package database

import (
	"time"

	"resto-pos/internal/models"
)

// RevenueReportResult summarizes the payments ledger for a date range.
type RevenueReportResult struct {
	TotalRevenue float64
	OrderCount   int64
}

// GetRevenueReport sums recorded payments within a date range. Revenue comes
// from the ledger, not order totals, so partially paid orders count only
// what was actually received.
func GetRevenueReport(start, end time.Time) (*RevenueReportResult, error) {
	var result RevenueReportResult

	// COALESCE ensures we get 0 instead of NULL if no payments exist
	err := DB.Model(&models.Payment{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ? AND status <> ?", start, end, models.StatusCancelled).
		Count(&result.OrderCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
