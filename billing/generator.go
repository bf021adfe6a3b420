package billing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/billing/logger"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

// Attachment is an in-memory file handed to the Sender.
type Attachment struct {
	Filename string
	Content  []byte
	MIMEType string
}

// Renderer produces the invoice document. Implementations must be
// deterministic for the same inputs so a document can be regenerated at any
// time and match the original.
type Renderer interface {
	Render(invoice *models.Invoice, lines []models.InvoiceLine, client *models.Client) ([]byte, error)
}

// Sender delivers an email with an optional attachment.
type Sender interface {
	Send(to, bcc []string, subject, body string, attachment *Attachment) error
}

// Options configure a Generator.
type Options struct {
	// Prefix is the fixed tag segment of the invoice number series.
	Prefix string
	// VATRate defaults to DefaultVATRate when zero.
	VATRate decimal.Decimal
	// BCC, when set, receives a copy of every dispatched invoice.
	BCC string
	// DocumentsDir is where rendered PDFs are written. Empty keeps
	// documents in memory only (useful in tests).
	DocumentsDir string
	// DueDays is the payment term added to the issue date. Defaults to 14.
	DueDays int
}

// Generator drives invoice creation end to end: duplicate detection,
// aggregation, totals, numbering, the atomic persist, then document
// rendering and email dispatch as non-transactional side effects.
type Generator struct {
	db       *gorm.DB
	renderer Renderer
	sender   Sender
	opts     Options
}

func NewGenerator(db *gorm.DB, renderer Renderer, sender Sender, opts Options) *Generator {
	if opts.DueDays <= 0 {
		opts.DueDays = 14
	}
	if opts.VATRate.IsZero() {
		opts.VATRate = DefaultVATRate
	}
	return &Generator{db: db, renderer: renderer, sender: sender, opts: opts}
}

// Outcome classifies the result of one generation request.
type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeResent           Outcome = "resent"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeSkippedEmpty     Outcome = "skipped_empty"
	OutcomeFailed           Outcome = "failed"
)

// Result is the per-client outcome of a generation request. Warnings cover
// the recoverable post-commit problems (document rendering, dispatch, no
// recipients) that leave the invoice standing.
type Result struct {
	ClientID   uint            `json:"client_id"`
	ClientName string          `json:"client_name"`
	Outcome    Outcome         `json:"outcome"`
	Invoice    *models.Invoice `json:"invoice,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	Err        error           `json:"-"`
}

// Summary aggregates results across a batch run.
type Summary struct {
	Results []Result `json:"results"`
	Created int      `json:"created"`
	Resent  int      `json:"resent"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
}

func (s *Summary) add(res Result) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeResent:
		s.Resent++
	case OutcomeSkippedDuplicate, OutcomeSkippedEmpty:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Request describes one invoice generation for a client.
type Request struct {
	Client     *models.Client
	Type       string
	PeriodFrom time.Time
	PeriodTo   time.Time
	IssuedDate time.Time
	Force      bool
	Resend     bool
	AllowPaid  bool
	// Lines, when non-nil, bypasses aggregation (hosting and manual
	// invoices carry pre-built lines).
	Lines []LineDraft
	// SkipDuplicateCheck disables the (client, type, period) entry check.
	// Manual invoices have no natural period key; the hosting monitor
	// performs its own expiry-scoped check.
	SkipDuplicateCheck bool
}

// Generate runs the full pipeline for one client and period. It never
// panics across a batch: every failure is captured in the Result.
func (g *Generator) Generate(req Request) Result {
	log := logger.WithComponent("generator")
	res := Result{ClientID: req.Client.ID, ClientName: req.Client.Name}

	var existing *models.Invoice
	if !req.SkipDuplicateCheck {
		found, err := findInvoiceForPeriod(g.db, req.Client.ID, req.Type, req.PeriodFrom, req.PeriodTo)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
		existing = found
	}

	if existing != nil {
		switch {
		case req.Resend && !req.Force:
			res.Invoice = existing
			res.Outcome = OutcomeResent
			res.Warnings = g.Redispatch(existing, "")
			return res
		case req.Force:
			if existing.Paid && !req.AllowPaid {
				res.Outcome = OutcomeFailed
				res.Err = fmt.Errorf("invoice %s: %w", existing.Number, ErrPaidInvoice)
				return res
			}
			// deleted inside the transaction below, immediately
			// before the number is reallocated
		default:
			res.Invoice = existing
			res.Outcome = OutcomeSkippedDuplicate
			return res
		}
	}

	lines := req.Lines
	if lines == nil {
		var err error
		lines, err = Aggregate(g.db, req.Client.ID, req.PeriodFrom, req.PeriodTo)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
	}
	if len(lines) == 0 {
		res.Outcome = OutcomeSkippedEmpty
		return res
	}

	net, vat, gross := Totals(lines, g.opts.VATRate)

	invoice := &models.Invoice{
		ClientID:    req.Client.ID,
		Client:      *req.Client,
		InvoiceType: req.Type,
		PeriodFrom:  req.PeriodFrom,
		PeriodTo:    req.PeriodTo,
		IssuedDate:  req.IssuedDate,
		DueDate:     req.IssuedDate.AddDate(0, 0, g.opts.DueDays),
		NetAmount:   net,
		VATRate:     g.opts.VATRate,
		VATAmount:   vat,
		TotalAmount: gross,
	}
	for _, line := range lines {
		invoice.Lines = append(invoice.Lines, models.InvoiceLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}

	err := g.db.Transaction(func(tx *gorm.DB) error {
		if existing == nil && !req.SkipDuplicateCheck {
			// re-check under the transaction: a concurrent run may
			// have won the race since the entry check
			found, err := findInvoiceForPeriod(tx, req.Client.ID, req.Type, req.PeriodFrom, req.PeriodTo)
			if err != nil {
				return err
			}
			if found != nil {
				return ErrDuplicateInvoice
			}
		}

		// allocate before any force-delete so the replacement gets a
		// strictly new number and the freed suffix is never reused
		number, err := NextNumber(tx, g.opts.Prefix)
		if err != nil {
			return err
		}
		invoice.Number = number

		if existing != nil {
			if err := deleteInvoice(tx, existing.ID); err != nil {
				return err
			}
		}

		if err := tx.Omit("Client").Create(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// the unique index on number is the backstop for
				// two writers racing past the entry check
				return ErrDuplicateInvoice
			}
			return fmt.Errorf("failed to persist invoice: %w", err)
		}

		if ids := workLogIDs(lines); len(ids) > 0 {
			err := tx.Model(&models.WorkLog{}).Where("id IN ?", ids).Update("billed", true).Error
			if err != nil {
				return fmt.Errorf("failed to mark work logs billed: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, ErrDuplicateInvoice) {
		res.Outcome = OutcomeSkippedDuplicate
		return res
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Invoice = invoice
	res.Outcome = OutcomeCreated
	log.Info().
		Str("number", invoice.Number).
		Str("client", req.Client.Name).
		Str("type", req.Type).
		Str("total", gross.StringFixed(2)).
		Msg("invoice issued")

	// Side effects happen outside the transaction. Their failures are
	// warnings: the committed financial record must survive rendering and
	// notification outages.
	attachment, err := g.ensureDocument(invoice)
	if err != nil {
		res.Warnings = append(res.Warnings, "document generation failed: "+err.Error())
		return res
	}
	res.Warnings = append(res.Warnings, g.dispatch(invoice, attachment, "")...)
	return res
}

// GenerateMonthly runs monthly generation for every active client. A
// per-client failure never aborts the batch.
func (g *Generator) GenerateMonthly(from, to, issued time.Time, force, resend, allowPaid bool) Summary {
	var summary Summary

	var clients []models.Client
	if err := g.db.Where("active = ?", true).Order("id ASC").Find(&clients).Error; err != nil {
		summary.add(Result{Outcome: OutcomeFailed, Err: fmt.Errorf("failed to load clients: %w", err)})
		return summary
	}

	for i := range clients {
		summary.add(g.Generate(Request{
			Client:     &clients[i],
			Type:       models.InvoiceTypeMonthly,
			PeriodFrom: from,
			PeriodTo:   to,
			IssuedDate: issued,
			Force:      force,
			Resend:     resend,
			AllowPaid:  allowPaid,
		}))
	}
	return summary
}

// GenerateManual invoices an operator-selected set of work logs. The logs
// are grouped by client and each group becomes one manual invoice whose
// period spans the group's earliest and latest work date. Manual invoices
// carry no period key, so duplicate detection is skipped.
func (g *Generator) GenerateManual(workLogIDs []uint, issued time.Time) (Summary, error) {
	var summary Summary
	if len(workLogIDs) == 0 {
		return summary, errors.New("no work logs selected")
	}

	var logs []models.WorkLog
	err := g.db.Preload("Client").
		Where("id IN ? AND billed = ?", workLogIDs, false).
		Order("date ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return summary, fmt.Errorf("failed to load work logs: %w", err)
	}
	if len(logs) == 0 {
		return summary, errors.New("selected work logs are unknown or already billed")
	}

	grouped := make(map[uint][]models.WorkLog)
	var order []uint
	for _, log := range logs {
		if _, ok := grouped[log.ClientID]; !ok {
			order = append(order, log.ClientID)
		}
		grouped[log.ClientID] = append(grouped[log.ClientID], log)
	}

	for _, clientID := range order {
		group := grouped[clientID]
		client := group[0].Client

		var drafts []LineDraft
		from, to := group[0].Date, group[0].Date
		for _, log := range group {
			if log.Date.Before(from) {
				from = log.Date
			}
			if log.Date.After(to) {
				to = log.Date
			}
			drafts = append(drafts, LineDraft{
				Description: log.Description,
				Quantity:    log.Quantity,
				UnitPrice:   log.UnitPrice,
				Total:       log.Total(),
				WorkLogID:   log.ID,
			})
		}

		summary.add(g.Generate(Request{
			Client:             &client,
			Type:               models.InvoiceTypeManual,
			PeriodFrom:         from,
			PeriodTo:           to,
			IssuedDate:         issued,
			Lines:              drafts,
			SkipDuplicateCheck: true,
		}))
	}
	return summary, nil
}

// Redispatch regenerates the document for an existing invoice and emails it
// again. Used for resends and hosting payment reminders. Problems are
// returned as warnings; the invoice itself is never touched.
func (g *Generator) Redispatch(invoice *models.Invoice, subjectPrefix string) []string {
	attachment, err := g.ensureDocument(invoice)
	if err != nil {
		return []string{"document generation failed: " + err.Error()}
	}
	return g.dispatch(invoice, attachment, subjectPrefix)
}

// RegenerateDocuments re-renders the PDF for one invoice by number, or for
// every invoice missing a document when number is empty. Returns how many
// documents were written.
func (g *Generator) RegenerateDocuments(number string) (int, error) {
	query := g.db.Order("id ASC")
	if number != "" {
		query = query.Where("number = ?", number)
	} else {
		query = query.Where("pdf_path = ? OR pdf_path IS NULL", "")
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return 0, fmt.Errorf("failed to load invoices: %w", err)
	}
	if number != "" && len(invoices) == 0 {
		return 0, fmt.Errorf("no invoice with number %s", number)
	}

	count := 0
	for i := range invoices {
		if _, err := g.ensureDocument(&invoices[i]); err != nil {
			return count, fmt.Errorf("invoice %s: %w", invoices[i].Number, err)
		}
		count++
	}
	return count, nil
}

// ensureDocument renders the invoice PDF, writes it to the documents dir and
// persists the path on the invoice. Rendering is deterministic, so the
// document is always rebuilt rather than read back from disk.
func (g *Generator) ensureDocument(invoice *models.Invoice) (*Attachment, error) {
	if len(invoice.Lines) == 0 {
		err := g.db.Where("invoice_id = ?", invoice.ID).Order("id ASC").Find(&invoice.Lines).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load invoice lines: %w", err)
		}
	}
	if invoice.Client.ID == 0 {
		if err := g.db.First(&invoice.Client, invoice.ClientID).Error; err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
	}

	content, err := g.renderer.Render(invoice, invoice.Lines, &invoice.Client)
	if err != nil {
		return nil, err
	}

	filename := invoice.Number + ".pdf"
	if g.opts.DocumentsDir != "" {
		if err := os.MkdirAll(g.opts.DocumentsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create documents dir: %w", err)
		}
		path := filepath.Join(g.opts.DocumentsDir, filename)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write document: %w", err)
		}
		if invoice.PDFPath != path {
			err := g.db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("pdf_path", path).Error
			if err != nil {
				return nil, fmt.Errorf("failed to persist document path: %w", err)
			}
			invoice.PDFPath = path
		}
	}

	return &Attachment{Filename: filename, Content: content, MIMEType: "application/pdf"}, nil
}

// dispatch emails the invoice to the client's resolved recipients. Every
// problem is a warning: a missed notification never invalidates the issued
// invoice.
func (g *Generator) dispatch(invoice *models.Invoice, attachment *Attachment, subjectPrefix string) []string {
	log := logger.WithComponent("dispatch")

	recipients, err := g.resolveRecipients(&invoice.Client)
	if err != nil {
		return []string{"recipient lookup failed: " + err.Error()}
	}
	if len(recipients) == 0 {
		log.Warn().Str("number", invoice.Number).Str("client", invoice.Client.Name).
			Msg("client has no email on file; invoice issued but not dispatched")
		return []string{fmt.Sprintf("client %s has no email on file", invoice.Client.Name)}
	}

	var bcc []string
	if g.opts.BCC != "" {
		bcc = []string{g.opts.BCC}
	}

	subject := subjectPrefix + "Invoice " + invoice.Number
	body := fmt.Sprintf(
		"Hello,\n\nPlease find attached invoice %s for the period %s - %s.\n\nBest regards\n",
		invoice.Number,
		invoice.PeriodFrom.Format("2006-01-02"),
		invoice.PeriodTo.Format("2006-01-02"),
	)

	if err := g.sender.Send(recipients, bcc, subject, body, attachment); err != nil {
		return []string{"dispatch failed: " + err.Error()}
	}

	log.Info().Str("number", invoice.Number).Strs("to", recipients).Msg("invoice dispatched")
	return nil
}

// resolveRecipients returns the primary client email followed by all active
// secondary addresses, deduplicated.
func (g *Generator) resolveRecipients(client *models.Client) ([]string, error) {
	var extras []models.ClientEmail
	err := g.db.Where("client_id = ? AND active = ?", client.ID, true).
		Order("id ASC").
		Find(&extras).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var recipients []string
	appendAddr := func(addr string) {
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		recipients = append(recipients, addr)
	}

	appendAddr(client.Email)
	for _, extra := range extras {
		appendAddr(extra.Email)
	}
	return recipients, nil
}

func findInvoiceForPeriod(db *gorm.DB, clientID uint, invoiceType string, from, to time.Time) (*models.Invoice, error) {
	var invoice models.Invoice
	err := db.Where("client_id = ? AND invoice_type = ? AND period_from = ? AND period_to = ?",
		clientID, invoiceType, from, to).
		Order("id DESC").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing invoice: %w", err)
	}
	return &invoice, nil
}

// deleteInvoice hard-deletes an invoice and its lines. Only the force path
// uses it; freed numbers become reallocatable immediately.
func deleteInvoice(tx *gorm.DB, invoiceID uint) error {
	if err := tx.Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceLine{}).Error; err != nil {
		return fmt.Errorf("failed to delete invoice lines: %w", err)
	}
	if err := tx.Delete(&models.Invoice{}, invoiceID).Error; err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

func workLogIDs(lines []LineDraft) []uint {
	var ids []uint
	for _, line := range lines {
		if line.WorkLogID != 0 {
			ids = append(ids, line.WorkLogID)
		}
	}
	return ids
}
