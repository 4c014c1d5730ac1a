package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkCompleted_OneShot(t *testing.T) {
	tx := Transaction{UserID: 1, Amount: 50, Kind: KindReward, Status: TxPending}
	now := time.Now()

	assert.NoError(t, tx.MarkCompleted(now))
	assert.Equal(t, TxCompleted, tx.Status)
	assert.Equal(t, now, *tx.ProcessedAt)

	// Final states never transition again.
	assert.ErrorIs(t, tx.MarkCompleted(now), ErrTransactionFinal)
	assert.ErrorIs(t, tx.MarkFailed(now), ErrTransactionFinal)
}

func TestMarkFailed_OneShot(t *testing.T) {
	tx := Transaction{UserID: 1, Amount: 50, Kind: KindPenalty, Status: TxPending}
	now := time.Now()

	assert.NoError(t, tx.MarkFailed(now))
	assert.Equal(t, TxFailed, tx.Status)
	assert.ErrorIs(t, tx.MarkCompleted(now), ErrTransactionFinal)
}

func TestGenerateHash_Deterministic(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := Transaction{
		UserID:      1,
		CreatedAt:   created,
		Amount:      -120.50,
		Kind:        KindPenalty,
		Source:      SourceManualAdjust,
		Description: "speeding",
	}

	first := tx.GenerateHash("secret")
	assert.Len(t, first, 64)
	assert.Equal(t, first, tx.GenerateHash("secret"))

	// Any field change or key change yields a different hash.
	assert.NotEqual(t, first, tx.GenerateHash("other-secret"))
	tampered := tx
	tampered.Amount = -1.00
	assert.NotEqual(t, first, tampered.GenerateHash("secret"))
}
