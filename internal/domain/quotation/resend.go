package quotation

import (
	"time"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// ResendMode selects which resend variant to apply.
type ResendMode string

const (
	// ResendFull rejects the old quotation and drafts a new one with the
	// supplied fare.
	ResendFull ResendMode = "FULL"

	// ResendSimple expires the old quotation and drafts a new one carrying
	// forward its fare, currency and note unchanged.
	ResendSimple ResendMode = "SIMPLE"
)

// resendableFrom lists the stored statuses a quotation may be resent from.
var resendableFrom = map[Status]bool{
	StatusDraft:    true,
	StatusSent:     true,
	StatusExpired:  true,
	StatusRejected: true,
}

// Plan is the pair of writes a resend produces: the old quotation with its
// superseding status applied, and the replacement draft.
type Plan struct {
	OldStatus Status
	NewDraft  *Quotation
}

// ResendPlan computes the two records a resend writes, without side effects.
// Full mode requires a new fare; simple mode ignores the overrides and clones
// the old values.
func ResendPlan(mode ResendMode, old *Quotation, newFare, newCurrency, newNote string, now time.Time) (*Plan, error) {
	if !resendableFrom[old.Status()] {
		return nil, shared.NewInvalidTransitionError(string(old.Status()), "resend")
	}

	switch mode {
	case ResendFull:
		if newFare == "" {
			return nil, shared.NewValidationError("new fare is required for a full resend")
		}
		currency := newCurrency
		if currency == "" {
			currency = old.Currency()
		}
		draft, err := New(old.GroupRequestID(), newFare, currency, newNote, now)
		if err != nil {
			return nil, err
		}
		return &Plan{OldStatus: StatusRejected, NewDraft: draft}, nil

	case ResendSimple:
		draft, err := New(old.GroupRequestID(), old.TotalFare(), old.Currency(), old.Note(), now)
		if err != nil {
			return nil, err
		}
		return &Plan{OldStatus: StatusExpired, NewDraft: draft}, nil

	default:
		return nil, shared.NewValidationError("unknown resend mode")
	}
}
