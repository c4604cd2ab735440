package repository

import (
	"testing"

	"github.com/mmeshcher/lottery-system/internal/model"
)

func TestSettlementCredit(t *testing.T) {
	tests := []struct {
		name      string
		txType    model.TransactionType
		newStatus model.TransactionStatus
		want      int64
	}{
		{
			name:      "approved deposit credits net amount",
			txType:    model.TransactionDeposit,
			newStatus: model.TransactionStatusApproved,
			want:      900,
		},
		{
			name:      "rejected withdrawal refunds full amount",
			txType:    model.TransactionWithdrawal,
			newStatus: model.TransactionStatusRejected,
			want:      1000,
		},
		{
			name:      "approved withdrawal changes nothing",
			txType:    model.TransactionWithdrawal,
			newStatus: model.TransactionStatusApproved,
			want:      0,
		},
		{
			name:      "rejected deposit changes nothing",
			txType:    model.TransactionDeposit,
			newStatus: model.TransactionStatusRejected,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settlementCredit(tt.txType, tt.newStatus, 1000, 900)
			if got != tt.want {
				t.Fatalf("settlementCredit(%s, %s) = %d, want %d", tt.txType, tt.newStatus, got, tt.want)
			}
		})
	}
}
