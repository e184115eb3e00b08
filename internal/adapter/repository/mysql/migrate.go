package mysql

import (
	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/loan"

	"gorm.io/gorm"
)

// AutoMigrate creates every table the engine touches and seeds the loan id sequence.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&asset.SupportedAsset{},
		&loan.Sequence{},
		&loan.Loan{},
		&loan.AccountLoan{},
		&escrow.Deposit{},
		&claim.Token{},
		&claim.Operator{},
		&funds.Balance{},
		&funds.PayoutPolicy{},
		&funds.FeeAccrual{},
	)
	if err != nil {
		return err
	}
	seq := loan.Sequence{}
	return db.Where(loan.Sequence{Name: loanSequence}).
		Attrs(loan.Sequence{Next: 1}).
		FirstOrCreate(&seq).Error
}
