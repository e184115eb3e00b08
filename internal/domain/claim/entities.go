package claim

import "github.com/ethereum/go-ethereum/common"

// Token is the transferable lender claim on a loan. TokenID equals the loan id.
type Token struct {
	TokenID        uint64         `gorm:"primaryKey;autoIncrement:false" json:"token_id"`
	Owner          common.Address `gorm:"type:binary(20);not null;index:idx_claim_tokens_owner" json:"owner"`
	Approved       common.Address `gorm:"type:binary(20)" json:"approved"`
	Burned         bool           `gorm:"not null" json:"burned"`
	OriginalLender common.Address `gorm:"type:binary(20);not null" json:"original_lender"`
	MintedAt       int64          `gorm:"not null" json:"minted_at"`
	BurnedAt       int64          `json:"burned_at"`
}

func (Token) TableName() string { return "claim_tokens" }

// Metadata is fixed at mint and never changes afterwards.
type Metadata struct {
	LoanID         uint64         `json:"loan_id"`
	OriginalLender common.Address `json:"original_lender"`
	MintedAt       int64          `json:"minted_at"`
}

func (t *Token) Metadata() Metadata {
	return Metadata{LoanID: t.TokenID, OriginalLender: t.OriginalLender, MintedAt: t.MintedAt}
}

// Operator grants an account the right to move every token of Owner.
type Operator struct {
	Owner    common.Address `gorm:"primaryKey;type:binary(20)"`
	Operator common.Address `gorm:"primaryKey;type:binary(20)"`
	Approved bool           `gorm:"not null"`
}

func (Operator) TableName() string { return "claim_operators" }
