package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileResult reports what the one-shot maintenance job changed.
type ReconcileResult struct {
	FixedCount            int `json:"fixedCount"`
	MergedUserCount       int `json:"mergedUserCount"`
	BackfilledCreditCount int `json:"backfilledCreditCount"`
}

// ReconcileService repairs historically inconsistent debt and journal data.
// Three ordered passes, each independently idempotent and interruptible
// between units; a corrupt row aborts only its own unit, never the sweep.
type ReconcileService struct {
	db           *gorm.DB
	txHashSecret string
}

func NewReconcileService(db *gorm.DB, txHashSecret string) *ReconcileService {
	return &ReconcileService{db: db, txHashSecret: txHashSecret}
}

// Run executes the three passes in order and returns the combined counts.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	fixed, err := s.FixPerDebtInvariants(ctx)
	if err != nil {
		return result, err
	}
	result.FixedCount = fixed

	merged, err := s.MergeActiveDebts(ctx)
	if err != nil {
		return result, err
	}
	result.MergedUserCount = merged

	backfilled, err := s.BackfillDebtPaymentCredits(ctx)
	if err != nil {
		return result, err
	}
	result.BackfilledCreditCount = backfilled

	logger.Log.Info("reconciliation finished",
		zap.Int("fixed", result.FixedCount),
		zap.Int("merged_users", result.MergedUserCount),
		zap.Int("backfilled_credits", result.BackfilledCreditCount))
	return result, nil
}

// fixDebt clamps one debt to legal ranges in place. Returns true when any
// field changed, detected by comparing serialized before/after state.
func fixDebt(debt *models.OutstandingDebt, now time.Time) bool {
	before, _ := json.Marshal(debt)

	if debt.OriginalAmount < 0 {
		debt.OriginalAmount = 0
	}
	if debt.CurrentAmount < 0 {
		debt.CurrentAmount = 0
	}
	if debt.PaidAmount < 0 {
		debt.PaidAmount = 0
	}
	if debt.PaidAmount > debt.CurrentAmount {
		debt.PaidAmount = debt.CurrentAmount
	}
	if debt.CurrentAmount == 0 || debt.PaidAmount >= debt.CurrentAmount {
		debt.Status = models.DebtPaid
		if debt.PaidAt == nil {
			debt.PaidAt = &now
		}
	}

	after, _ := json.Marshal(debt)
	return string(before) != string(after)
}

// FixPerDebtInvariants clamps every debt ever created to legal ranges and
// forces settled rows to PAID. Returns the count of rows actually changed.
func (s *ReconcileService) FixPerDebtInvariants(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.db.Model(&models.OutstandingDebt{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	fixed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			var debt models.OutstandingDebt
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&debt, id).Error; err != nil {
				return err
			}
			if !fixDebt(&debt, time.Now()) {
				return nil
			}
			if err := tx.Save(&debt).Error; err != nil {
				return err
			}
			fixed++
			return nil
		})
		if err != nil {
			logger.Log.Error("invariant fix failed", zap.Uint("debt_id", id), zap.Error(err))
		}
	}
	return fixed, nil
}

// MergeActiveDebts collapses every user with more than one active debt down
// to a single row. The earliest-created row becomes primary and absorbs the
// combined remaining amount and late fees; all other active rows are
// archived as WAIVED with their remaining zeroed and a note pointing at the
// merge target. The whole per-user merge is one transaction.
func (s *ReconcileService) MergeActiveDebts(ctx context.Context) (int, error) {
	active := []models.DebtStatus{models.DebtOutstanding, models.DebtPartial}

	var userIDs []uint
	err := s.db.Model(&models.OutstandingDebt{}).
		Where("status IN ?", active).
		Group("user_id").
		Having("COUNT(*) > 1").
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		if err := s.mergeActiveDebtsForUser(userID); err != nil {
			logger.Log.Error("debt merge failed", zap.Uint("user_id", userID), zap.Error(err))
			continue
		}
		merged++
	}
	return merged, nil
}

func (s *ReconcileService) mergeActiveDebtsForUser(userID uint) error {
	active := []models.DebtStatus{models.DebtOutstanding, models.DebtPartial}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var debts []models.OutstandingDebt
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("user_id = ? AND status IN ?", userID, active).
			Order("created_at").
			Find(&debts).Error
		if err != nil {
			return err
		}
		if len(debts) <= 1 {
			return nil // raced with another writer; nothing to merge
		}

		now := time.Now()
		var totalRemaining, totalLateFees float64
		for i := range debts {
			fixDebt(&debts[i], now)
			if r := debts[i].Remaining(); r > 0 {
				totalRemaining += r
			}
			totalLateFees += debts[i].LateFees
		}

		primary := &debts[0]
		if totalRemaining > 0 {
			primary.CurrentAmount = primary.PaidAmount + totalRemaining
			principal := primary.PaidAmount + totalRemaining - totalLateFees
			if principal > primary.OriginalAmount {
				primary.OriginalAmount = principal
			}
			primary.LateFees = totalLateFees
			primary.Status = models.DebtOutstanding
		} else {
			primary.Status = models.DebtPaid
			primary.PaidAmount = primary.CurrentAmount
			if primary.PaidAt == nil {
				primary.PaidAt = &now
			}
		}
		if err := tx.Save(primary).Error; err != nil {
			return err
		}

		for i := 1; i < len(debts); i++ {
			d := &debts[i]
			d.Status = models.DebtWaived
			d.PaidAmount = d.CurrentAmount
			note := fmt.Sprintf("Merged into debt #%d at %s", primary.ID, now.Format(time.RFC3339))
			if d.Notes != "" {
				d.Notes = d.Notes + "\n" + note
			} else {
				d.Notes = note
			}
			if err := tx.Save(d).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// backfillDescription derives the correlation text a backfilled credit entry
// carries for a given debt payment. The exact-tuple existence check keys on
// this string, which is what makes re-runs create nothing new.
func backfillDescription(payment *models.Transaction) string {
	ref := strings.TrimSpace(payment.Description)
	if ref == "" {
		ref = fmt.Sprintf("transaction #%d", payment.ID)
	}
	return "Backfilled credit for " + ref
}

// BackfillDebtPaymentCredits creates the missing reward-journal credit for
// every historical COMPLETED debt payment that never received one. Safe to
// re-run: existence is checked by the exact (user, kind, source,
// description, status) tuple.
func (s *ReconcileService) BackfillDebtPaymentCredits(ctx context.Context) (int, error) {
	var payments []models.Transaction
	err := s.db.Where("kind = ? AND status = ?", models.KindDebtPayment, models.TxCompleted).
		Order("id").
		Find(&payments).Error
	if err != nil {
		return 0, err
	}

	backfilled := 0
	for i := range payments {
		if err := ctx.Err(); err != nil {
			return backfilled, err
		}

		payment := &payments[i]
		desc := backfillDescription(payment)

		err := s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND kind = ? AND source = ? AND description = ? AND status = ?",
					payment.UserID, models.KindReward, models.SourceDebtBackfill, desc, models.TxCompleted).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return nil
			}

			now := time.Now()
			credit := models.Transaction{
				UserID:      payment.UserID,
				Amount:      math.Abs(payment.Amount),
				Kind:        models.KindReward,
				Source:      models.SourceDebtBackfill,
				Status:      models.TxCompleted,
				Description: desc,
				ProcessedAt: &now,
				CreatedAt:   now,
			}
			credit.Hash = credit.GenerateHash(s.txHashSecret)
			if err := tx.Create(&credit).Error; err != nil {
				return err
			}
			backfilled++
			return nil
		})
		if err != nil {
			logger.Log.Error("credit backfill failed",
				zap.Uint("transaction_id", payment.ID), zap.Error(err))
		}
	}
	return backfilled, nil
}
