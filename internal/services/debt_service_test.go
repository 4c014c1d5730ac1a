package services

import (
	"testing"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDebtTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.OutstandingDebt{}, &models.Transaction{}, &models.ViolationReport{})
	db.AutoMigrate(&models.OutstandingDebt{}, &models.Transaction{}, &models.ViolationReport{})

	logger.Log = zap.NewNop()
	zap.ReplaceGlobals(logger.Log)
	return db
}

func newDebtService(db *gorm.DB) *DebtService {
	return NewDebtService(db, NewBalanceService(db), nil)
}

func TestCalculateLateFee(t *testing.T) {
	svc := newDebtService(setupDebtTestDB())

	assert.Equal(t, 0.0, svc.CalculateLateFee(1000, 0))
	assert.Equal(t, 0.0, svc.CalculateLateFee(1000, -1))
	assert.Equal(t, 25.0, svc.CalculateLateFee(1000, 1))
	assert.Equal(t, 50.0, svc.CalculateLateFee(1000, 2))
}

func TestCreateDebt(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	debt, err := svc.CreateDebt(1, -750)
	assert.NoError(t, err)
	assert.Equal(t, 750.0, debt.OriginalAmount)
	assert.Equal(t, 750.0, debt.CurrentAmount)
	assert.Equal(t, models.DebtOutstanding, debt.Status)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), debt.DueDate, time.Minute)

	_, err = svc.CreateDebt(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDebtAmount)
}

func TestUpdateLateFees_AccruesWholeWeeks(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	// Due 14 days ago: exactly two whole weeks past due.
	db.Create(&models.OutstandingDebt{
		UserID:         1,
		OriginalAmount: 1000,
		CurrentAmount:  1000,
		Status:         models.DebtOutstanding,
		DueDate:        time.Now().Add(-14 * 24 * time.Hour),
	})

	summary, err := svc.UpdateLateFeesForAllDebts()
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Failed)

	var debt models.OutstandingDebt
	db.First(&debt)
	assert.Equal(t, 2, debt.WeeksPastDue)
	assert.Equal(t, 50.0, debt.LateFees)
	assert.Equal(t, 1050.0, debt.CurrentAmount)
	assert.NotNil(t, debt.LastPenaltyDate)
}

func TestUpdateLateFees_Idempotent(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.OutstandingDebt{
		UserID:         1,
		OriginalAmount: 1000,
		CurrentAmount:  1000,
		Status:         models.DebtOutstanding,
		DueDate:        time.Now().Add(-10 * 24 * time.Hour),
	})

	_, err := svc.UpdateLateFeesForAllDebts()
	assert.NoError(t, err)
	_, err = svc.UpdateLateFeesForAllDebts()
	assert.NoError(t, err)

	// 10 days past due is one whole week; the second run adds nothing.
	var debt models.OutstandingDebt
	db.First(&debt)
	assert.Equal(t, 1, debt.WeeksPastDue)
	assert.Equal(t, 25.0, debt.LateFees)
	assert.Equal(t, 1025.0, debt.CurrentAmount)
}

func TestUpdateLateFees_SkipsNotYetDueAndSettled(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 100, CurrentAmount: 100,
		Status: models.DebtOutstanding, DueDate: time.Now().Add(48 * time.Hour),
	})
	db.Create(&models.OutstandingDebt{
		UserID: 2, OriginalAmount: 100, CurrentAmount: 100, PaidAmount: 100,
		Status: models.DebtPaid, DueDate: time.Now().Add(-30 * 24 * time.Hour),
	})

	summary, err := svc.UpdateLateFeesForAllDebts()
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Scanned)
}

func TestRecordPayment_PartialThenPaid(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	seed := models.OutstandingDebt{
		UserID: 1, OriginalAmount: 1000, CurrentAmount: 1050, LateFees: 50,
		WeeksPastDue: 2, Status: models.DebtOutstanding,
		DueDate: time.Now().Add(-14 * 24 * time.Hour),
	}
	db.Create(&seed)

	debt, err := svc.RecordPayment(seed.ID, 400, "counter-001")
	assert.NoError(t, err)
	assert.Equal(t, models.DebtPartial, debt.Status)
	assert.Equal(t, 400.0, debt.PaidAmount)
	assert.Equal(t, 650.0, debt.Remaining())
	assert.Nil(t, debt.PaidAt)

	debt, err = svc.RecordPayment(seed.ID, 650, "counter-002")
	assert.NoError(t, err)
	assert.Equal(t, models.DebtPaid, debt.Status)
	assert.Equal(t, 0.0, debt.Remaining())
	assert.NotNil(t, debt.PaidAt)
	assert.Equal(t, "counter-002", debt.PaymentReference)
}

func TestRecordPayment_OverpaymentClampsAtCurrent(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	debt, err := svc.CreateDebt(1, 100)
	assert.NoError(t, err)

	paid, err := svc.RecordPayment(debt.ID, 150, "over-001")
	assert.NoError(t, err)
	assert.Equal(t, models.DebtPaid, paid.Status)
	assert.Equal(t, 100.0, paid.PaidAmount)
	assert.LessOrEqual(t, paid.PaidAmount, paid.CurrentAmount)
	assert.Equal(t, 0.0, paid.Remaining())
	assert.NotNil(t, paid.PaidAt)

	// The overpay also never lands in the persisted row.
	var stored models.OutstandingDebt
	db.First(&stored, debt.ID)
	assert.Equal(t, 100.0, stored.PaidAmount)
}

func TestRecordPayment_Errors(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	_, err := svc.RecordPayment(999, 100, "")
	assert.ErrorIs(t, err, ErrDebtNotFound)

	seed := models.OutstandingDebt{
		UserID: 1, OriginalAmount: 100, CurrentAmount: 100,
		Status: models.DebtWaived, DueDate: time.Now(),
	}
	db.Create(&seed)

	_, err = svc.RecordPayment(seed.ID, 50, "")
	assert.ErrorIs(t, err, ErrDebtAlreadyWaived)

	_, err = svc.RecordPayment(seed.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

func TestWaiveDebt(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	seed := models.OutstandingDebt{
		UserID: 1, OriginalAmount: 500, CurrentAmount: 500,
		Status: models.DebtOutstanding, DueDate: time.Now(),
	}
	db.Create(&seed)

	debt, err := svc.WaiveDebt(seed.ID, 42, "hardship case")
	assert.NoError(t, err)
	assert.Equal(t, models.DebtWaived, debt.Status)
	assert.Contains(t, debt.Notes, "Waived by admin 42")
	assert.Contains(t, debt.Notes, "hardship case")
	// Amounts survive for audit.
	assert.Equal(t, 500.0, debt.CurrentAmount)

	_, err = svc.WaiveDebt(seed.ID, 42, "")
	assert.ErrorIs(t, err, ErrDebtAlreadyWaived)

	_, err = svc.WaiveDebt(999, 42, "")
	assert.ErrorIs(t, err, ErrDebtNotFound)
}

func TestCheckNegativeBalance_CreatesDebt(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.Transaction{
		UserID: 1, Amount: -500, Kind: models.KindPenalty, Status: models.TxCompleted,
	})

	debt, err := svc.CheckAndCreateDebtForNegativeBalance(1)
	assert.NoError(t, err)
	assert.NotNil(t, debt)
	assert.Equal(t, 500.0, debt.OriginalAmount)
	assert.Equal(t, models.DebtOutstanding, debt.Status)

	// Re-running with an unchanged balance touches nothing.
	again, err := svc.CheckAndCreateDebtForNegativeBalance(1)
	assert.NoError(t, err)
	assert.Equal(t, debt.ID, again.ID)
	assert.Equal(t, 500.0, again.CurrentAmount)

	var count int64
	db.Model(&models.OutstandingDebt{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCheckNegativeBalance_AdjustsExistingDebt(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.Transaction{
		UserID: 1, Amount: -500, Kind: models.KindPenalty, Status: models.TxCompleted,
	})
	first, err := svc.CheckAndCreateDebtForNegativeBalance(1)
	assert.NoError(t, err)

	// The balance worsens; the existing debt absorbs the delta.
	db.Create(&models.Transaction{
		UserID: 1, Amount: -100, Kind: models.KindDeduction, Status: models.TxCompleted,
	})

	adjusted, err := svc.CheckAndCreateDebtForNegativeBalance(1)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, adjusted.ID)
	assert.Equal(t, 600.0, adjusted.OriginalAmount)
	assert.Equal(t, 600.0, adjusted.CurrentAmount)
}

func TestCheckNegativeBalance_NonNegativeIsNoop(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.Transaction{
		UserID: 1, Amount: 200, Kind: models.KindReward, Status: models.TxCompleted,
	})

	debt, err := svc.CheckAndCreateDebtForNegativeBalance(1)
	assert.NoError(t, err)
	assert.Nil(t, debt)
}

func TestActiveDebtTotal(t *testing.T) {
	db := setupDebtTestDB()
	svc := newDebtService(db)

	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 300, CurrentAmount: 300, PaidAmount: 100,
		Status: models.DebtPartial, DueDate: time.Now(),
	})
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 200, CurrentAmount: 200,
		Status: models.DebtOutstanding, DueDate: time.Now(),
	})
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 400, CurrentAmount: 400, PaidAmount: 400,
		Status: models.DebtPaid, DueDate: time.Now(),
	})

	total, debts, err := svc.ActiveDebtTotal(1)
	assert.NoError(t, err)
	assert.Equal(t, 400.0, total)
	assert.Len(t, debts, 2)
}
