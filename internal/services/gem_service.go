package services

import (
	"context"
	"errors"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidPenaltyAmount = errors.New("penalty amount must be greater than zero")
	ErrInvalidGemAmount     = errors.New("gem amount must be greater than zero")
	ErrUnknownSeverity      = errors.New("unknown violation severity")
)

// PenaltyInput describes one penalty application. Amount may be zero, in
// which case the severity's recommended deduction is used.
type PenaltyInput struct {
	CitizenID   uint
	Amount      int
	Severity    models.Severity
	Reason      string
	AppliedBy   string
	ViolationID *uint
}

// PenaltyResult reports the post-penalty state.
type PenaltyResult struct {
	NewBalance     int
	WasAlreadyZero bool
}

// SeverityBreakdown is one row of the penalty history aggregation.
type SeverityBreakdown struct {
	Severity models.Severity `json:"severity"`
	Count    int64           `json:"count"`
	Total    int64           `json:"total"`
}

// GemService is the penalty engine. Every mutation of a gem account goes
// through here so the floor-at-zero and restriction invariants hold on every
// write: amount never drops below zero, and IsRestricted is true exactly
// when the amount is zero.
type GemService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewGemService(db *gorm.DB, notifier Notifier) *GemService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &GemService{db: db, notifier: notifier}
}

// startingGrant looks up the owner's role-based grant for lazily created
// accounts. Unknown citizens get a zero baseline.
func startingGrant(tx *gorm.DB, citizenID uint) int {
	var citizen models.Citizen
	if err := tx.First(&citizen, citizenID).Error; err != nil {
		return 0
	}
	return citizen.StartingGems()
}

func (s *GemService) resolveAmount(in PenaltyInput) (int, error) {
	if !models.ValidSeverity(in.Severity) {
		return 0, ErrUnknownSeverity
	}
	amount := in.Amount
	if amount == 0 {
		amount = models.RecommendedDeduction(in.Severity)
	}
	if amount <= 0 {
		return 0, ErrInvalidPenaltyAmount
	}
	return amount, nil
}

// ApplyPenalty deducts gems from the citizen ledger and appends the audit
// row in one transaction. The deduction floors at zero; no partial
// application is observable.
func (s *GemService) ApplyPenalty(in PenaltyInput) (*PenaltyResult, error) {
	amount, err := s.resolveAmount(in)
	if err != nil {
		return nil, err
	}

	var result PenaltyResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var gem models.CitizenGem
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("citizen_id = ?", in.CitizenID).First(&gem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			gem = models.CitizenGem{CitizenID: in.CitizenID, Amount: startingGrant(tx, in.CitizenID)}
		} else if err != nil {
			return err
		}

		result.WasAlreadyZero = gem.Amount == 0

		newAmount := gem.Amount - amount
		if newAmount < 0 {
			newAmount = 0
		}
		deducted := gem.Amount - newAmount

		gem.Amount = newAmount
		gem.IsRestricted = newAmount <= 0
		gem.LastUpdated = time.Now()
		if err := tx.Save(&gem).Error; err != nil {
			return err
		}

		record := models.GemPenaltyRecord{
			CitizenID:   in.CitizenID,
			Account:     models.GemLedgerCitizen,
			Amount:      deducted,
			Reason:      in.Reason,
			Severity:    in.Severity,
			ViolationID: in.ViolationID,
			AppliedBy:   in.AppliedBy,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result.NewBalance = newAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventPenaltyApplied,
		UserID: in.CitizenID,
		Payload: map[string]interface{}{
			"amount":      amount,
			"severity":    string(in.Severity),
			"new_balance": result.NewBalance,
			"restricted":  result.NewBalance == 0,
		},
	})
	return &result, nil
}

// ApplyDriverPenalty is the driver-ledger variant of ApplyPenalty. The two
// ledgers are independent tables so the bodies stay separate on purpose.
func (s *GemService) ApplyDriverPenalty(in PenaltyInput) (*PenaltyResult, error) {
	amount, err := s.resolveAmount(in)
	if err != nil {
		return nil, err
	}

	var result PenaltyResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var gem models.DriverGem
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("citizen_id = ?", in.CitizenID).First(&gem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			gem = models.DriverGem{CitizenID: in.CitizenID}
		} else if err != nil {
			return err
		}

		result.WasAlreadyZero = gem.Amount == 0

		newAmount := gem.Amount - amount
		if newAmount < 0 {
			newAmount = 0
		}
		deducted := gem.Amount - newAmount

		gem.Amount = newAmount
		gem.IsRestricted = newAmount <= 0
		gem.LastUpdated = time.Now()
		if err := tx.Save(&gem).Error; err != nil {
			return err
		}

		record := models.GemPenaltyRecord{
			CitizenID:   in.CitizenID,
			Account:     models.GemLedgerDriver,
			Amount:      deducted,
			Reason:      in.Reason,
			Severity:    in.Severity,
			ViolationID: in.ViolationID,
			AppliedBy:   in.AppliedBy,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result.NewBalance = newAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventPenaltyApplied,
		UserID: in.CitizenID,
		Payload: map[string]interface{}{
			"account":     models.GemLedgerDriver,
			"amount":      amount,
			"severity":    string(in.Severity),
			"new_balance": result.NewBalance,
		},
	})
	return &result, nil
}

// IncreaseGems credits gems outside the penalty path (restorations, manual
// adjustments). There is no ceiling.
func (s *GemService) IncreaseGems(citizenID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidGemAmount
	}

	var newBalance int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var gem models.CitizenGem
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("citizen_id = ?", citizenID).First(&gem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			gem = models.CitizenGem{CitizenID: citizenID, Amount: startingGrant(tx, citizenID)}
		} else if err != nil {
			return err
		}

		gem.Amount += amount
		gem.IsRestricted = gem.Amount <= 0
		gem.LastUpdated = time.Now()
		newBalance = gem.Amount
		return tx.Save(&gem).Error
	})
	return newBalance, err
}

// DecreaseGems debits gems outside the penalty path. Floors at zero; no
// audit row is written (use ApplyPenalty for violations).
func (s *GemService) DecreaseGems(citizenID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidGemAmount
	}

	var newBalance int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var gem models.CitizenGem
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("citizen_id = ?", citizenID).First(&gem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			gem = models.CitizenGem{CitizenID: citizenID, Amount: startingGrant(tx, citizenID)}
		} else if err != nil {
			return err
		}

		gem.Amount -= amount
		if gem.Amount < 0 {
			gem.Amount = 0
		}
		gem.IsRestricted = gem.Amount <= 0
		gem.LastUpdated = time.Now()
		newBalance = gem.Amount
		return tx.Save(&gem).Error
	})
	return newBalance, err
}

// SetRestriction overrides the restriction flag. A zero-gem account cannot
// be manually unrestricted: the request is downgraded to restricted and the
// effective value is returned.
func (s *GemService) SetRestriction(citizenID uint, restricted bool) (bool, error) {
	var effective bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var gem models.CitizenGem
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("citizen_id = ?", citizenID).First(&gem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		} else if err != nil {
			return err
		}

		effective = restricted
		if gem.Amount <= 0 {
			effective = true
		}
		gem.IsRestricted = effective
		gem.LastUpdated = time.Now()
		return tx.Save(&gem).Error
	})
	return effective, err
}

// GetCitizenGem returns the materialized citizen balance. Missing accounts
// read as an unrestricted zero-grant view without creating a row.
func (s *GemService) GetCitizenGem(citizenID uint) (*models.CitizenGem, error) {
	var gem models.CitizenGem
	err := s.db.Where("citizen_id = ?", citizenID).First(&gem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		grant := startingGrant(s.db, citizenID)
		return &models.CitizenGem{CitizenID: citizenID, Amount: grant, IsRestricted: grant <= 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &gem, nil
}

// GetDriverGem mirrors GetCitizenGem for the driver ledger.
func (s *GemService) GetDriverGem(citizenID uint) (*models.DriverGem, error) {
	var gem models.DriverGem
	err := s.db.Where("citizen_id = ?", citizenID).First(&gem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DriverGem{CitizenID: citizenID, IsRestricted: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &gem, nil
}

// PenaltyHistory returns the raw penalty rows plus the count/sum aggregation
// grouped by severity.
func (s *GemService) PenaltyHistory(citizenID uint) ([]models.GemPenaltyRecord, []SeverityBreakdown, error) {
	var records []models.GemPenaltyRecord
	if err := s.db.Where("citizen_id = ?", citizenID).
		Order("created_at desc").Find(&records).Error; err != nil {
		return nil, nil, err
	}

	var breakdown []SeverityBreakdown
	if err := s.db.Model(&models.GemPenaltyRecord{}).
		Select("severity, COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("citizen_id = ?", citizenID).
		Group("severity").
		Scan(&breakdown).Error; err != nil {
		return nil, nil, err
	}

	return records, breakdown, nil
}
