package services

import (
	"context"
	"testing"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReconcileTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.OutstandingDebt{}, &models.Transaction{})
	db.AutoMigrate(&models.OutstandingDebt{}, &models.Transaction{})

	logger.Log = zap.NewNop()
	zap.ReplaceGlobals(logger.Log)
	return db
}

func TestFixPerDebtInvariants_ClampsAndSettles(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	// Overpaid row: paid beyond current.
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 100, CurrentAmount: 100, PaidAmount: 150,
		Status: models.DebtPartial, DueDate: time.Now(),
	})
	// Negative amounts from a bad import.
	db.Create(&models.OutstandingDebt{
		UserID: 2, OriginalAmount: -50, CurrentAmount: -50,
		Status: models.DebtOutstanding, DueDate: time.Now(),
	})
	// Healthy row.
	db.Create(&models.OutstandingDebt{
		UserID: 3, OriginalAmount: 200, CurrentAmount: 200,
		Status: models.DebtOutstanding, DueDate: time.Now(),
	})

	fixed, err := svc.FixPerDebtInvariants(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, fixed)

	var overpaid models.OutstandingDebt
	db.Where("user_id = ?", 1).First(&overpaid)
	assert.Equal(t, 100.0, overpaid.PaidAmount)
	assert.Equal(t, models.DebtPaid, overpaid.Status)
	assert.NotNil(t, overpaid.PaidAt)

	var negative models.OutstandingDebt
	db.Where("user_id = ?", 2).First(&negative)
	assert.Equal(t, 0.0, negative.OriginalAmount)
	assert.Equal(t, 0.0, negative.CurrentAmount)
	assert.Equal(t, models.DebtPaid, negative.Status)

	var healthy models.OutstandingDebt
	db.Where("user_id = ?", 3).First(&healthy)
	assert.Equal(t, models.DebtOutstanding, healthy.Status)

	// A second pass finds nothing left to fix.
	fixed, err = svc.FixPerDebtInvariants(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, fixed)
}

func TestMergeActiveDebts_CollapsesToEarliest(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	earlier := time.Now().Add(-48 * time.Hour)
	later := time.Now().Add(-24 * time.Hour)

	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 300, CurrentAmount: 300,
		Status: models.DebtOutstanding, DueDate: earlier, CreatedAt: earlier,
	})
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 200, CurrentAmount: 200,
		Status: models.DebtOutstanding, DueDate: later, CreatedAt: later,
	})
	// Different user with a single active debt stays untouched.
	db.Create(&models.OutstandingDebt{
		UserID: 2, OriginalAmount: 100, CurrentAmount: 100,
		Status: models.DebtOutstanding, DueDate: later,
	})

	merged, err := svc.MergeActiveDebts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, merged)

	var debts []models.OutstandingDebt
	db.Where("user_id = ?", 1).Order("created_at").Find(&debts)
	assert.Len(t, debts, 2)

	primary, absorbed := debts[0], debts[1]
	assert.Equal(t, models.DebtOutstanding, primary.Status)
	assert.Equal(t, 500.0, primary.CurrentAmount)
	assert.Equal(t, 500.0, primary.OriginalAmount)

	assert.Equal(t, models.DebtWaived, absorbed.Status)
	assert.Equal(t, absorbed.CurrentAmount, absorbed.PaidAmount)
	assert.Contains(t, absorbed.Notes, "Merged into debt #")

	// The total owed across the user is conserved.
	var active []models.OutstandingDebt
	db.Where("user_id = ? AND status IN ?", 1,
		[]models.DebtStatus{models.DebtOutstanding, models.DebtPartial}).Find(&active)
	assert.Len(t, active, 1)
	assert.Equal(t, 500.0, active[0].Remaining())
}

func TestMergeActiveDebts_PreservesPaymentsAndFees(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	earlier := time.Now().Add(-72 * time.Hour)
	later := time.Now().Add(-24 * time.Hour)

	// Primary already partially paid, secondary carries late fees.
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 400, CurrentAmount: 400, PaidAmount: 100,
		Status: models.DebtPartial, DueDate: earlier, CreatedAt: earlier,
	})
	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 200, CurrentAmount: 210, LateFees: 10,
		WeeksPastDue: 2, Status: models.DebtOutstanding, DueDate: later, CreatedAt: later,
	})

	merged, err := svc.MergeActiveDebts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, merged)

	var primary models.OutstandingDebt
	db.Where("user_id = ? AND status <> ?", 1, models.DebtWaived).First(&primary)

	// Remaining 300 + 210 = 510 on top of the 100 already paid.
	assert.Equal(t, 610.0, primary.CurrentAmount)
	assert.Equal(t, 100.0, primary.PaidAmount)
	assert.Equal(t, 510.0, primary.Remaining())
	assert.Equal(t, 10.0, primary.LateFees)
	assert.Equal(t, 600.0, primary.OriginalAmount)
}

func TestBackfillDebtPaymentCredits_IdempotentReruns(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	now := time.Now()
	db.Create(&models.Transaction{
		UserID: 1, Amount: 350, Kind: models.KindDebtPayment,
		Source: models.SourceFinePayment, Status: models.TxCompleted,
		Description: "Debt payment for debt #9, order abc123", ProcessedAt: &now,
	})
	// Pending payments never earn a backfill.
	db.Create(&models.Transaction{
		UserID: 2, Amount: 100, Kind: models.KindDebtPayment,
		Source: models.SourceFinePayment, Status: models.TxPending,
	})

	backfilled, err := svc.BackfillDebtPaymentCredits(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, backfilled)

	var credit models.Transaction
	err = db.Where("kind = ? AND source = ?", models.KindReward, models.SourceDebtBackfill).
		First(&credit).Error
	assert.NoError(t, err)
	assert.Equal(t, uint(1), credit.UserID)
	assert.Equal(t, 350.0, credit.Amount)
	assert.Equal(t, models.TxCompleted, credit.Status)
	assert.Equal(t, "Backfilled credit for Debt payment for debt #9, order abc123", credit.Description)
	assert.NotEmpty(t, credit.Hash)

	// Re-run creates nothing new.
	backfilled, err = svc.BackfillDebtPaymentCredits(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, backfilled)

	var count int64
	db.Model(&models.Transaction{}).
		Where("source = ?", models.SourceDebtBackfill).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReconcileRun_CombinesCounts(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 100, CurrentAmount: 100, PaidAmount: 120,
		Status: models.DebtPartial, DueDate: time.Now(),
	})
	db.Create(&models.Transaction{
		UserID: 1, Amount: 120, Kind: models.KindDebtPayment,
		Source: models.SourceFinePayment, Status: models.TxCompleted,
		Description: "Debt payment for debt #1, order xyz",
	})

	result, err := svc.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.FixedCount)
	assert.Equal(t, 0, result.MergedUserCount)
	assert.Equal(t, 1, result.BackfilledCreditCount)
}

func TestReconcileRun_HonorsContextCancellation(t *testing.T) {
	db := setupReconcileTestDB()
	svc := NewReconcileService(db, "test-secret")

	db.Create(&models.OutstandingDebt{
		UserID: 1, OriginalAmount: 100, CurrentAmount: 100,
		Status: models.DebtOutstanding, DueDate: time.Now(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
