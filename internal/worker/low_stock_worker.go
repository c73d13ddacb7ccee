package worker

// low_stock_worker.go
// Processes QueueLowStock jobs: e-mails the company's admins when an item
// drops to or below its critical threshold.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LowStockPayload is the job payload sent to QueueLowStock.
type LowStockPayload struct {
	CompanyID         uuid.UUID `json:"company_id"`
	ItemID            uuid.UUID `json:"item_id"`
	ItemName          string    `json:"item_name"`
	Quantity          int       `json:"quantity"`
	CriticalThreshold int       `json:"critical_threshold"`
}

// AlertSender delivers an alert message (infra.Mailer in production).
type AlertSender interface {
	Enabled() bool
	SendAlert(to []string, subject, body string) error
}

// RecipientLister resolves who receives a company's alerts.
type RecipientLister interface {
	ListAlertEmails(ctx context.Context, companyID uuid.UUID, roles ...string) ([]string, error)
}

type LowStockWorker struct {
	sender     AlertSender
	recipients RecipientLister
}

func NewLowStockWorker(sender AlertSender, recipients RecipientLister) *LowStockWorker {
	return &LowStockWorker{sender: sender, recipients: recipients}
}

// Process sends the alert. Returning an error makes the pool retry the job.
func (w *LowStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p LowStockPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// A malformed payload will never succeed; drop it.
		log.Error().Err(err).Msg("low_stock_worker: invalid payload")
		return nil
	}
	if !w.sender.Enabled() {
		log.Warn().Str("item", p.ItemName).Int("quantity", p.Quantity).Msg("low_stock_worker: SMTP not configured, alert only logged")
		return nil
	}

	to, err := w.recipients.ListAlertEmails(ctx, p.CompanyID, model.RoleAdmin, model.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("low_stock_worker: recipients: %w", err)
	}
	if len(to) == 0 {
		log.Warn().Str("company_id", p.CompanyID.String()).Msg("low_stock_worker: no recipients")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s", p.ItemName)
	body := fmt.Sprintf("%s is down to %d units (critical threshold %d).\nItem ID: %s\n",
		p.ItemName, p.Quantity, p.CriticalThreshold, p.ItemID)
	if err := w.sender.SendAlert(to, subject, body); err != nil {
		return err
	}
	log.Info().Str("item", p.ItemName).Int("recipients", len(to)).Msg("low_stock_worker: alert sent")
	return nil
}
