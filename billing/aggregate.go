package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

// LineDraft is one chargeable item collected for a client and period. It is
// not persisted; the orchestrator turns drafts into invoice lines inside the
// generation transaction.
type LineDraft struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	// WorkLogID is set for work-entry lines so the orchestrator can flip
	// their billed flag at commit. Zero for subscription lines.
	WorkLogID uint
}

// Aggregate collects the chargeable items for a client within the inclusive
// period: one line per active subscription with a positive monthly fee,
// then one line per unbilled work log dated inside the period, in ascending
// date order (ties broken by id). An empty result means "do not invoice".
//
// Aggregate only reads; it has no side effects.
func Aggregate(db *gorm.DB, clientID uint, from, to time.Time) ([]LineDraft, error) {
	var subs []models.Subscription
	err := db.Where("client_id = ? AND active = ?", clientID, true).
		Order("id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	one := decimal.NewFromInt(1)
	var drafts []LineDraft
	for _, sub := range subs {
		fee := sub.MonthlyFee.Round(2)
		if !fee.IsPositive() {
			continue
		}
		drafts = append(drafts, LineDraft{
			Description: sub.Title,
			Quantity:    one,
			UnitPrice:   fee,
			Total:       fee,
		})
	}

	var logs []models.WorkLog
	err = db.Where("client_id = ? AND billed = ? AND date BETWEEN ? AND ?", clientID, false, from, to).
		Order("date ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}

	for _, log := range logs {
		drafts = append(drafts, LineDraft{
			Description: log.Description,
			Quantity:    log.Quantity,
			UnitPrice:   log.UnitPrice,
			Total:       log.Total(),
			WorkLogID:   log.ID,
		})
	}

	return drafts, nil
}
