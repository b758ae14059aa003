package model

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	module := "loc"
	id := GenerateUUIDWithSuffix(module)
	assert.Contains(t, id, module+"_")
	assert.NotEqual(t, id, GenerateUUIDWithSuffix(module))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("1234", "1234"))
	assert.False(t, SecureCompare("1234", "1235"))
	assert.False(t, SecureCompare("1234", "12345"))
	assert.False(t, SecureCompare("1234", ""))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "4444", MaskCardNumber("1111222233334444"))
	assert.Equal(t, "123", MaskCardNumber("123"))
	assert.Equal(t, "", MaskCardNumber(""))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole number", input: "40", want: 4000},
		{name: "two decimals", input: "15.50", want: 1550},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "smallest unit", input: "0.01", want: 1},
		{name: "trailing zeros beyond precision", input: "20.000", want: 2000},
		{name: "surrounding spaces", input: " 7.25 ", want: 725},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-10", wantErr: true},
		{name: "too many decimals", input: "1.005", wantErr: true},
		{name: "not a number", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "overflow", input: "92233720368547758.08", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "75.50", FormatAmount(7550))
	assert.Equal(t, "0.01", FormatAmount(1))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "5432.10", FormatAmount(543210))
	assert.True(t, decimal.RequireFromString("10500.75").Equal(ToDecimal(1050075)))
}

func TestAccountValidate(t *testing.T) {
	valid := Account{Name: "John Doe", CardNumber: "1111222233334444", PIN: "1234", Balance: 543210}
	assert.NoError(t, valid.Validate())

	shortCard := valid
	shortCard.CardNumber = "1111"
	assert.Error(t, shortCard.Validate())

	alphaPIN := valid
	alphaPIN.PIN = "12a4"
	assert.Error(t, alphaPIN.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	negative := valid
	negative.Balance = -1
	assert.Error(t, negative.Validate())
}

func TestAccountJSONHidesPIN(t *testing.T) {
	account := &Account{ID: 1, Name: "Jane Smith", CardNumber: "9999888877776666", PIN: "5678"}
	data, err := account.ToJSON()
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "5678")
	assert.Equal(t, "6666", account.CardLast4())
}

func TestTxnTypeApply(t *testing.T) {
	assert.Equal(t, int64(6000), TxnWithdraw.Apply(10000, 4000))
	assert.Equal(t, int64(7550), TxnDeposit.Apply(6000, 1550))
	assert.True(t, TxnDeposit.Valid())
	assert.False(t, TxnType("transfer").Valid())
}

func TestNewReceipt(t *testing.T) {
	now := time.Now().UTC()
	account := &Account{ID: 1, CardNumber: "1111222233334444", Balance: 9999}
	txn := &Transaction{ID: 7, AccountID: 1, Type: TxnDeposit, Amount: 2000, BalanceAfter: 12000, CreatedAt: now}

	receipt := NewReceipt(account, txn)
	assert.Equal(t, int64(7), receipt.TransactionID)
	assert.Equal(t, "4444", receipt.CardLast4)
	assert.Equal(t, TxnDeposit, receipt.TxnType)
	assert.Equal(t, int64(2000), receipt.Amount)
	assert.Equal(t, int64(12000), receipt.NewBalance)
	assert.Equal(t, now, receipt.Timestamp)
}
