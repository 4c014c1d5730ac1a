package services

import (
	"testing"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGemTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Citizen{}, &models.CitizenGem{}, &models.DriverGem{}, &models.GemPenaltyRecord{})
	db.AutoMigrate(&models.Citizen{}, &models.CitizenGem{}, &models.DriverGem{}, &models.GemPenaltyRecord{})

	logger.Log = zap.NewNop()
	zap.ReplaceGlobals(logger.Log)
	return db
}

func TestApplyPenalty_FloorsAtZero(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 1, Amount: 3})

	result, err := svc.ApplyPenalty(PenaltyInput{
		CitizenID: 1,
		Amount:    5,
		Severity:  models.SeveritySerious,
		Reason:    "reckless driving",
		AppliedBy: "officer-7",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NewBalance)
	assert.False(t, result.WasAlreadyZero)

	var gem models.CitizenGem
	db.Where("citizen_id = ?", 1).First(&gem)
	assert.Equal(t, 0, gem.Amount)
	assert.True(t, gem.IsRestricted)

	// Audit row records the actual deduction, not the requested one.
	var record models.GemPenaltyRecord
	db.Where("citizen_id = ?", 1).First(&record)
	assert.Equal(t, 3, record.Amount)
	assert.Equal(t, models.SeveritySerious, record.Severity)
	assert.Equal(t, models.GemLedgerCitizen, record.Account)
}

func TestApplyPenalty_RepeatedAtZero(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 2, Amount: 2})

	for i := 0; i < 3; i++ {
		_, err := svc.ApplyPenalty(PenaltyInput{
			CitizenID: 2,
			Amount:    5,
			Severity:  models.SeveritySevere,
			Reason:    "signal violation",
		})
		assert.NoError(t, err)
	}

	var gem models.CitizenGem
	db.Where("citizen_id = ?", 2).First(&gem)
	assert.Equal(t, 0, gem.Amount)
	assert.True(t, gem.IsRestricted)

	// One audit row per application, even when nothing could be deducted.
	var records []models.GemPenaltyRecord
	db.Where("citizen_id = ?", 2).Order("id").Find(&records)
	assert.Len(t, records, 3)
	assert.Equal(t, 2, records[0].Amount)
	assert.Equal(t, 0, records[1].Amount)
	assert.Equal(t, 0, records[2].Amount)
}

func TestApplyPenalty_RecommendedDeduction(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 3, Amount: 20})

	// Amount zero falls back to the severity table.
	result, err := svc.ApplyPenalty(PenaltyInput{
		CitizenID: 3,
		Severity:  models.SeverityCritical,
		Reason:    "hit and run",
	})
	assert.NoError(t, err)
	assert.Equal(t, 10, result.NewBalance)

	_, err = svc.ApplyPenalty(PenaltyInput{
		CitizenID: 3,
		Severity:  "EXTREME",
		Reason:    "bogus",
	})
	assert.ErrorIs(t, err, ErrUnknownSeverity)

	_, err = svc.ApplyPenalty(PenaltyInput{
		CitizenID: 3,
		Amount:    -4,
		Severity:  models.SeverityMinor,
		Reason:    "bogus",
	})
	assert.ErrorIs(t, err, ErrInvalidPenaltyAmount)
}

func TestApplyPenalty_LazyAccountUsesStartingGrant(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.Citizen{Name: "Rahim", NID: "1990123456", Role: models.RolePolice})

	var citizen models.Citizen
	db.Where("n_id = ?", "1990123456").First(&citizen)

	result, err := svc.ApplyPenalty(PenaltyInput{
		CitizenID: citizen.ID,
		Amount:    5,
		Severity:  models.SeverityModerate,
		Reason:    "parking violation",
	})
	assert.NoError(t, err)
	// Police start at 20 gems.
	assert.Equal(t, 15, result.NewBalance)
}

func TestApplyDriverPenalty_IndependentLedger(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 4, Amount: 10})
	db.Create(&models.DriverGem{CitizenID: 4, Amount: 8})

	result, err := svc.ApplyDriverPenalty(PenaltyInput{
		CitizenID: 4,
		Amount:    3,
		Severity:  models.SeverityMinor,
		Reason:    "lane violation",
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, result.NewBalance)

	// The citizen ledger is untouched.
	var citizenGem models.CitizenGem
	db.Where("citizen_id = ?", 4).First(&citizenGem)
	assert.Equal(t, 10, citizenGem.Amount)

	var record models.GemPenaltyRecord
	db.Where("citizen_id = ? AND account = ?", 4, models.GemLedgerDriver).First(&record)
	assert.Equal(t, 3, record.Amount)
}

func TestIncreaseAndDecreaseGems(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 5, Amount: 0, IsRestricted: true})

	balance, err := svc.IncreaseGems(5, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, balance)

	// Crossing above zero lifts the restriction.
	var gem models.CitizenGem
	db.Where("citizen_id = ?", 5).First(&gem)
	assert.False(t, gem.IsRestricted)

	balance, err = svc.DecreaseGems(5, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, balance)

	db.Where("citizen_id = ?", 5).First(&gem)
	assert.True(t, gem.IsRestricted)

	_, err = svc.IncreaseGems(5, 0)
	assert.ErrorIs(t, err, ErrInvalidGemAmount)
	_, err = svc.DecreaseGems(5, -1)
	assert.ErrorIs(t, err, ErrInvalidGemAmount)
}

func TestSetRestriction_ZeroBalanceStaysRestricted(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 6, Amount: 0, IsRestricted: true})

	effective, err := svc.SetRestriction(6, false)
	assert.NoError(t, err)
	assert.True(t, effective)

	db.Create(&models.CitizenGem{CitizenID: 7, Amount: 5})
	effective, err = svc.SetRestriction(7, true)
	assert.NoError(t, err)
	assert.True(t, effective)

	effective, err = svc.SetRestriction(7, false)
	assert.NoError(t, err)
	assert.False(t, effective)
}

func TestGetCitizenGem_MissingAccountIsVirtual(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.Citizen{Name: "Karim", NID: "1985001122", Role: models.RoleCitizen})

	var citizen models.Citizen
	db.Where("n_id = ?", "1985001122").First(&citizen)

	gem, err := svc.GetCitizenGem(citizen.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, gem.Amount)
	assert.False(t, gem.IsRestricted)

	// The read must not have materialized a row.
	var count int64
	db.Model(&models.CitizenGem{}).Where("citizen_id = ?", citizen.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPenaltyHistory_Breakdown(t *testing.T) {
	db := setupGemTestDB()
	svc := NewGemService(db, nil)

	db.Create(&models.CitizenGem{CitizenID: 8, Amount: 100})

	for i := 0; i < 2; i++ {
		_, err := svc.ApplyPenalty(PenaltyInput{
			CitizenID: 8, Amount: 2, Severity: models.SeverityMinor, Reason: "parking",
		})
		assert.NoError(t, err)
	}
	_, err := svc.ApplyPenalty(PenaltyInput{
		CitizenID: 8, Amount: 10, Severity: models.SeverityCritical, Reason: "dui",
	})
	assert.NoError(t, err)

	records, breakdown, err := svc.PenaltyHistory(8)
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	bySeverity := make(map[models.Severity]SeverityBreakdown)
	for _, b := range breakdown {
		bySeverity[b.Severity] = b
	}
	assert.Equal(t, int64(2), bySeverity[models.SeverityMinor].Count)
	assert.Equal(t, int64(4), bySeverity[models.SeverityMinor].Total)
	assert.Equal(t, int64(1), bySeverity[models.SeverityCritical].Count)
	assert.Equal(t, int64(10), bySeverity[models.SeverityCritical].Total)
}
