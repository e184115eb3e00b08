package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeLoanRequestCreated Type = "loan.request_created"
	TypeLoanFunded         Type = "loan.funded"
	TypeLoanRepaid         Type = "loan.repaid"
	TypeLoanDefaulted      Type = "loan.defaulted"
	TypeLoanCancelled      Type = "loan.cancelled"
	TypeClaimTransferred   Type = "claim.transferred"
	TypeFeesWithdrawn      Type = "treasury.fees_withdrawn"
)

type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       Type              `json:"type"`
	LoanID     uint64            `json:"loan_id,omitempty"`
	Attributes map[string]string `json:"attributes"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func New(t Type, loanID uint64, at time.Time, attrs map[string]string) Event {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Event{ID: uuid.New(), Type: t, LoanID: loanID, Attributes: attrs, OccurredAt: at.UTC()}
}

// Emitter publishes committed state changes. Nothing in the engine reads them back.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, Event) error { return nil }
