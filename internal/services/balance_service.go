package services

import (
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"

	"gorm.io/gorm"
)

// EarningsSource is one of the historically parallel places money can be
// earned or owed: the transaction journal and the legacy report subsystem.
// Balance derivation takes the max of each side across sources, which avoids
// double counting entries that exist in both.
type EarningsSource interface {
	Name() string
	Earnings(tx *gorm.DB, userID uint) (float64, error)
	Penalties(tx *gorm.DB, userID uint) (float64, error)
}

// JournalSource sums COMPLETED journal entries. Debt payments are excluded
// on both sides: they settle a debt, they do not change the net balance.
type JournalSource struct{}

func (JournalSource) Name() string { return "transaction_journal" }

func (JournalSource) Earnings(tx *gorm.DB, userID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status = ? AND kind IN ?",
			userID, models.TxCompleted, []models.TransactionKind{models.KindReward, models.KindBonus}).
		Scan(&total).Error
	return total, err
}

func (JournalSource) Penalties(tx *gorm.DB, userID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(ABS(amount)), 0)").
		Where("user_id = ? AND status = ? AND kind IN ?",
			userID, models.TxCompleted, []models.TransactionKind{models.KindPenalty, models.KindDeduction}).
		Scan(&total).Error
	return total, err
}

// ReportSource sums APPROVED violation reports: rewards for the reporter,
// fines for the accused.
type ReportSource struct{}

func (ReportSource) Name() string { return "violation_reports" }

func (ReportSource) Earnings(tx *gorm.DB, userID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.ViolationReport{}).
		Select("COALESCE(SUM(reward_amount), 0)").
		Where("reporter_id = ? AND status = ?", userID, models.ReportApproved).
		Scan(&total).Error
	return total, err
}

func (ReportSource) Penalties(tx *gorm.DB, userID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.ViolationReport{}).
		Select("COALESCE(SUM(fine_amount), 0)").
		Where("accused_id = ? AND status = ?", userID, models.ReportApproved).
		Scan(&total).Error
	return total, err
}

// BalanceService derives a user's net balance from the registered sources.
type BalanceService struct {
	db      *gorm.DB
	sources []EarningsSource
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{
		db:      db,
		sources: []EarningsSource{JournalSource{}, ReportSource{}},
	}
}

// Derive computes max(earnings across sources) - max(penalties across
// sources) within the caller's transaction scope.
func (s *BalanceService) Derive(tx *gorm.DB, userID uint) (float64, error) {
	var maxEarnings, maxPenalties float64
	for _, src := range s.sources {
		earn, err := src.Earnings(tx, userID)
		if err != nil {
			return 0, err
		}
		if earn > maxEarnings {
			maxEarnings = earn
		}

		pen, err := src.Penalties(tx, userID)
		if err != nil {
			return 0, err
		}
		if pen > maxPenalties {
			maxPenalties = pen
		}
	}
	return maxEarnings - maxPenalties, nil
}

// CurrentBalance derives the balance outside any enclosing transaction.
func (s *BalanceService) CurrentBalance(userID uint) (float64, error) {
	return s.Derive(s.db, userID)
}
