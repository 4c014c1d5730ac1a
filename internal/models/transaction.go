package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

type TransactionKind string

const (
	KindReward      TransactionKind = "REWARD"
	KindBonus       TransactionKind = "BONUS"
	KindPenalty     TransactionKind = "PENALTY"
	KindDeduction   TransactionKind = "DEDUCTION"
	KindDebtPayment TransactionKind = "DEBT_PAYMENT"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxCompleted TransactionStatus = "COMPLETED"
	TxFailed    TransactionStatus = "FAILED"
)

// Source tags identify which subsystem appended the entry.
const (
	SourceReportReward = "report_reward"
	SourceFinePayment  = "fine_payment"
	SourceManualAdjust = "manual_adjustment"
	SourceDebtBackfill = "debt_payment_backfill"
)

// ErrTransactionFinal guards the one-shot PENDING -> COMPLETED/FAILED
// transition. Journal entries are otherwise immutable.
var ErrTransactionFinal = errors.New("transaction status is already final")

// Transaction is one append-only journal entry. Amount is signed BDT:
// positive for credits (rewards, bonuses), negative for penalties and
// deductions. Only COMPLETED entries count toward a balance.
type Transaction struct {
	ID          uint              `gorm:"primarykey"`
	CreatedAt   time.Time         `gorm:"precision:3"` // Millisecond precision
	UserID      uint              `gorm:"index;not null"`
	Amount      float64           `gorm:"type:decimal(20,2);not null"`
	Kind        TransactionKind   `gorm:"type:varchar(20);index;not null"`
	Source      string            `gorm:"type:varchar(50);index;default:''"`
	Status      TransactionStatus `gorm:"type:varchar(20);index;default:'PENDING'"`
	Description string            `gorm:"type:text"`
	ProcessedAt *time.Time
	Hash        string `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the journal entry.
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%d|%.2f|%s|%s|%s",
		t.UserID, t.CreatedAt.UnixNano(), t.Amount, t.Kind, t.Source, t.Description)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// MarkCompleted transitions PENDING -> COMPLETED exactly once.
func (t *Transaction) MarkCompleted(now time.Time) error {
	if t.Status != TxPending {
		return ErrTransactionFinal
	}
	t.Status = TxCompleted
	t.ProcessedAt = &now
	return nil
}

// MarkFailed transitions PENDING -> FAILED exactly once.
func (t *Transaction) MarkFailed(now time.Time) error {
	if t.Status != TxPending {
		return ErrTransactionFinal
	}
	t.Status = TxFailed
	t.ProcessedAt = &now
	return nil
}
