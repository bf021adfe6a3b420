package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/billing/logger"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

// Hosting monitor thresholds, in days before expiry.
const (
	DefaultAdvanceDays  = 30
	DefaultReminderDays = 10
)

// Monitor evaluates annual hosting subscriptions and triggers advance
// invoices and payment reminders through the Generator. It holds the
// generator by reference and only calls its public operations.
type Monitor struct {
	db  *gorm.DB
	gen *Generator
}

func NewMonitor(db *gorm.DB, gen *Generator) *Monitor {
	return &Monitor{db: db, gen: gen}
}

// Run evaluates every active subscription with a positive annual hosting fee
// and an expiry date.
//
//   - expired subscriptions are ignored
//   - within advanceDays of expiry and no hosting invoice exists for that
//     expiry: one advance invoice is created and dispatched
//   - an unpaid hosting invoice exists and expiry is within remindDays: the
//     existing document is re-dispatched as a reminder
//
// The run is idempotent: repeating it before any state changes creates no
// additional invoices, because existence is keyed on (client, hosting,
// expiry).
func (m *Monitor) Run(today time.Time, advanceDays, remindDays int) Summary {
	log := logger.WithComponent("hosting-monitor")
	today = Date(today.Year(), today.Month(), today.Day())

	var summary Summary

	var subs []models.Subscription
	err := m.db.Preload("Client").
		Where("active = ? AND hosting_valid_until IS NOT NULL AND hosting_yearly_fee IS NOT NULL", true).
		Order("id ASC").
		Find(&subs).Error
	if err != nil {
		summary.add(Result{Outcome: OutcomeFailed, Err: fmt.Errorf("failed to load subscriptions: %w", err)})
		return summary
	}

	one := decimal.NewFromInt(1)
	for i := range subs {
		sub := &subs[i]
		if !sub.Client.Active {
			continue
		}
		if sub.HostingYearlyFee == nil || sub.HostingValidUntil == nil {
			continue
		}
		fee := sub.HostingYearlyFee.Round(2)
		if !fee.IsPositive() {
			continue
		}

		expiry := *sub.HostingValidUntil
		daysLeft := int(expiry.Sub(today).Hours() / 24)
		if daysLeft < 0 || daysLeft > advanceDays {
			continue
		}

		existing, err := m.findHostingInvoice(sub.ClientID, expiry)
		if err != nil {
			summary.add(Result{ClientID: sub.ClientID, ClientName: sub.Client.Name, Outcome: OutcomeFailed, Err: err})
			continue
		}

		if existing == nil {
			line := LineDraft{
				Description: "Hosting renewal until " + expiry.Format("2006-01-02"),
				Quantity:    one,
				UnitPrice:   fee,
				Total:       fee,
			}
			res := m.gen.Generate(Request{
				Client:     &sub.Client,
				Type:       models.InvoiceTypeHosting,
				PeriodFrom: today,
				PeriodTo:   expiry,
				IssuedDate: today,
				Lines:      []LineDraft{line},
				// existence was just checked against (client,
				// hosting, expiry); the period key differs per
				// run day and must not be re-checked
				SkipDuplicateCheck: true,
			})
			if res.Outcome == OutcomeCreated {
				log.Info().
					Str("number", res.Invoice.Number).
					Str("client", sub.Client.Name).
					Int("days_left", daysLeft).
					Msg("hosting advance invoice created")
			}
			summary.add(res)
			continue
		}

		if daysLeft <= remindDays && !existing.Paid {
			warnings := m.gen.Redispatch(existing, "REMINDER: ")
			log.Info().
				Str("number", existing.Number).
				Str("client", sub.Client.Name).
				Int("days_left", daysLeft).
				Msg("hosting payment reminder sent")
			summary.add(Result{
				ClientID:   sub.ClientID,
				ClientName: sub.Client.Name,
				Outcome:    OutcomeResent,
				Invoice:    existing,
				Warnings:   warnings,
			})
		}
	}

	return summary
}

// findHostingInvoice looks up the hosting invoice issued for a specific
// expiry date, which serves as the duplicate-detection key for this type.
func (m *Monitor) findHostingInvoice(clientID uint, expiry time.Time) (*models.Invoice, error) {
	var invoice models.Invoice
	err := m.db.Where("client_id = ? AND invoice_type = ? AND period_to = ?",
		clientID, models.InvoiceTypeHosting, expiry).
		Order("issued_date DESC, id DESC").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up hosting invoice: %w", err)
	}
	return &invoice, nil
}
