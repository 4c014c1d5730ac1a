package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDebtNotFound         = errors.New("debt not found")
	ErrDebtAlreadyWaived    = errors.New("debt has already been waived")
	ErrDebtNotActive        = errors.New("debt is not active")
	ErrInvalidDebtAmount    = errors.New("debt amount must be greater than zero")
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero")
)

const (
	// lateFeeWeeklyRate is the simple (non-compounding) weekly late fee.
	lateFeeWeeklyRate = 0.025
	// debtDuePeriod is how long a new debt has before fees start accruing.
	debtDuePeriod = 7 * 24 * time.Hour
	// balanceTolerance is the float slack when comparing a derived balance
	// against a stored remaining amount.
	balanceTolerance = 0.01
)

// AccrualSummary tallies one late-fee sweep.
type AccrualSummary struct {
	Scanned int
	Updated int
	Failed  int
}

// DebtService owns the OutstandingDebt lifecycle: creation from negative
// balances, payments, waivers, and weekly late-fee accrual.
type DebtService struct {
	db       *gorm.DB
	balance  *BalanceService
	notifier Notifier
}

func NewDebtService(db *gorm.DB, balance *BalanceService, notifier Notifier) *DebtService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DebtService{db: db, balance: balance, notifier: notifier}
}

// CalculateLateFee computes the fee for the given number of additional
// weeks. Simple interest on the original amount; the caller accumulates the
// result into LateFees.
func (s *DebtService) CalculateLateFee(originalAmount float64, weeksPastDue int) float64 {
	if weeksPastDue <= 0 {
		return 0
	}
	return originalAmount * lateFeeWeeklyRate * float64(weeksPastDue)
}

// CreateDebt opens a new OUTSTANDING debt due in one week. The sign of
// amount is ignored; debts always store the absolute obligation.
func (s *DebtService) CreateDebt(userID uint, amount float64) (*models.OutstandingDebt, error) {
	amount = math.Abs(amount)
	if amount == 0 {
		return nil, ErrInvalidDebtAmount
	}

	debt := &models.OutstandingDebt{
		UserID:         userID,
		OriginalAmount: amount,
		CurrentAmount:  amount,
		Status:         models.DebtOutstanding,
		DueDate:        time.Now().Add(debtDuePeriod),
	}
	if err := s.db.Create(debt).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventDebtCreated,
		UserID: userID,
		Payload: map[string]interface{}{
			"debt_id":  debt.ID,
			"amount":   debt.CurrentAmount,
			"due_date": debt.DueDate,
		},
	})
	return debt, nil
}

// GetDebt fetches a single debt row.
func (s *DebtService) GetDebt(debtID uint) (*models.OutstandingDebt, error) {
	var debt models.OutstandingDebt
	if err := s.db.First(&debt, debtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, err
	}
	return &debt, nil
}

// recordPayment applies a payment inside an existing transaction scope. The
// exported RecordPayment and the payment-gateway completion flow both funnel
// through here so the status flip logic exists once.
func (s *DebtService) recordPayment(tx *gorm.DB, debtID uint, amount float64, reference string) (*models.OutstandingDebt, error) {
	if amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	var debt models.OutstandingDebt
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&debt, debtID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDebtNotFound
	}
	if err != nil {
		return nil, err
	}
	if debt.Status == models.DebtWaived {
		return nil, ErrDebtAlreadyWaived
	}

	debt.PaidAmount += amount
	if reference != "" {
		debt.PaymentReference = reference
	}

	if debt.PaidAmount >= debt.CurrentAmount {
		// Gateways settle whatever amount the order was opened with, which
		// can exceed the remaining balance. The debt clamps at settled; the
		// raw amount survives in the journal entry and the reference.
		debt.PaidAmount = debt.CurrentAmount
		now := time.Now()
		debt.Status = models.DebtPaid
		debt.PaidAt = &now
	} else if debt.PaidAmount > 0 {
		debt.Status = models.DebtPartial
	}

	if err := tx.Save(&debt).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

// RecordPayment applies a payment against a debt. Status flips to PAID when
// the remaining amount reaches zero (stamping PaidAt), PARTIAL when some but
// not all has been paid. PaidAmount never exceeds CurrentAmount; an overpay
// settles the debt at CurrentAmount.
func (s *DebtService) RecordPayment(debtID uint, amount float64, reference string) (*models.OutstandingDebt, error) {
	var debt *models.OutstandingDebt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		debt, err = s.recordPayment(tx, debtID, amount, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventDebtPayment,
		UserID: debt.UserID,
		Payload: map[string]interface{}{
			"debt_id":   debt.ID,
			"amount":    amount,
			"reference": reference,
			"status":    string(debt.Status),
			"remaining": debt.Remaining(),
		},
	})
	return debt, nil
}

// WaiveDebt forces a debt to WAIVED. Amounts are left untouched so the
// audit trail survives.
func (s *DebtService) WaiveDebt(debtID uint, adminID uint, notes string) (*models.OutstandingDebt, error) {
	var debt models.OutstandingDebt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Set("gorm:query_option", "FOR UPDATE").First(&debt, debtID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDebtNotFound
		}
		if err != nil {
			return err
		}
		if debt.Status == models.DebtWaived {
			return ErrDebtAlreadyWaived
		}

		debt.Status = models.DebtWaived
		note := fmt.Sprintf("Waived by admin %d at %s", adminID, time.Now().Format(time.RFC3339))
		if notes != "" {
			note = note + ": " + notes
		}
		if debt.Notes != "" {
			debt.Notes = debt.Notes + "\n" + note
		} else {
			debt.Notes = note
		}
		return tx.Save(&debt).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventDebtWaived,
		UserID: debt.UserID,
		Payload: map[string]interface{}{
			"debt_id":  debt.ID,
			"admin_id": adminID,
		},
	})
	return &debt, nil
}

// UpdateLateFeesForAllDebts advances fee accrual for every overdue
// OUTSTANDING debt by whole elapsed weeks. Idempotent: a second run without
// time passing changes nothing, because fees are only added for the delta
// between the recomputed and stored WeeksPastDue. Each debt is updated in
// its own transaction so WeeksPastDue never advances without the matching
// fee, and one corrupt row cannot halt the sweep.
func (s *DebtService) UpdateLateFeesForAllDebts() (*AccrualSummary, error) {
	now := time.Now()

	var ids []uint
	err := s.db.Model(&models.OutstandingDebt{}).
		Where("status = ? AND due_date < ?", models.DebtOutstanding, now).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	summary := &AccrualSummary{Scanned: len(ids)}
	for _, id := range ids {
		if err := s.accrueLateFees(id, now); err != nil {
			summary.Failed++
			logger.Log.Error("late-fee accrual failed",
				zap.Uint("debt_id", id), zap.Error(err))
			continue
		}
		summary.Updated++
	}
	return summary, nil
}

func (s *DebtService) accrueLateFees(debtID uint, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var debt models.OutstandingDebt
		err := tx.Set("gorm:query_option", "FOR UPDATE").First(&debt, debtID).Error
		if err != nil {
			return err
		}
		// Re-check under lock: status may have changed since the scan.
		if debt.Status != models.DebtOutstanding || !debt.DueDate.Before(now) {
			return nil
		}

		daysPastDue := int(now.Sub(debt.DueDate).Hours() / 24)
		weeksPastDue := daysPastDue / 7
		if weeksPastDue <= debt.WeeksPastDue {
			return nil
		}

		deltaWeeks := weeksPastDue - debt.WeeksPastDue
		fee := s.CalculateLateFee(debt.OriginalAmount, deltaWeeks)

		debt.LateFees += fee
		debt.CurrentAmount = debt.OriginalAmount + debt.LateFees
		debt.WeeksPastDue = weeksPastDue
		debt.LastPenaltyDate = &now
		return tx.Save(&debt).Error
	})
}

// CheckAndCreateDebtForNegativeBalance derives the user's balance and, when
// negative, ensures exactly one active debt reflects it. An existing active
// debt is adjusted by the delta rather than replaced, preserving accrued
// fees and payment history.
func (s *DebtService) CheckAndCreateDebtForNegativeBalance(userID uint) (*models.OutstandingDebt, error) {
	var result *models.OutstandingDebt
	var created bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := s.balance.Derive(tx, userID)
		if err != nil {
			return err
		}
		if balance >= 0 {
			return nil
		}
		owed := math.Abs(balance)

		var active models.OutstandingDebt
		err = tx.Set("gorm:query_option", "FOR UPDATE").
			Where("user_id = ? AND status IN ?", userID,
				[]models.DebtStatus{models.DebtOutstanding, models.DebtPartial}).
			Order("created_at").
			First(&active).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			debt := models.OutstandingDebt{
				UserID:         userID,
				OriginalAmount: owed,
				CurrentAmount:  owed,
				Status:         models.DebtOutstanding,
				DueDate:        time.Now().Add(debtDuePeriod),
			}
			if err := tx.Create(&debt).Error; err != nil {
				return err
			}
			result = &debt
			created = true
			return nil
		}
		if err != nil {
			return err
		}

		delta := owed - active.Remaining()
		if math.Abs(delta) <= balanceTolerance {
			result = &active
			return nil
		}

		active.OriginalAmount += delta
		active.CurrentAmount += delta
		if err := tx.Save(&active).Error; err != nil {
			return err
		}
		result = &active
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created && result != nil {
		s.notifier.Publish(context.Background(), Event{
			Type:   EventDebtCreated,
			UserID: userID,
			Payload: map[string]interface{}{
				"debt_id": result.ID,
				"amount":  result.CurrentAmount,
				"reason":  "negative balance",
			},
		})
	}
	return result, nil
}

// ActiveDebtTotal sums the remaining amount across the user's active debt
// rows. Post-reconciliation there is at most one, but the read path sums
// defensively.
func (s *DebtService) ActiveDebtTotal(userID uint) (float64, []models.OutstandingDebt, error) {
	var debts []models.OutstandingDebt
	err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.DebtStatus{models.DebtOutstanding, models.DebtPartial}).
		Order("created_at").
		Find(&debts).Error
	if err != nil {
		return 0, nil, err
	}

	var total float64
	for i := range debts {
		if r := debts[i].Remaining(); r > 0 {
			total += r
		}
	}
	return total, debts, nil
}
