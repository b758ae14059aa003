package model

import (
	"encoding/json"
	"time"
)

// TxnType is the kind of ledger entry.
type TxnType string

const (
	TxnWithdraw TxnType = "withdraw"
	TxnDeposit  TxnType = "deposit"
)

// Valid reports whether t is a known transaction type.
func (t TxnType) Valid() bool {
	return t == TxnWithdraw || t == TxnDeposit
}

// Apply returns the balance that results from applying amount of type t.
func (t TxnType) Apply(balance, amount int64) int64 {
	if t == TxnWithdraw {
		return balance - amount
	}
	return balance + amount
}

// Transaction is an immutable ledger entry. BalanceAfter is the account
// balance right after the entry was applied.
type Transaction struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	Type         TxnType   `json:"txn_type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"timestamp"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// Receipt summarises one completed transaction for the card holder.
type Receipt struct {
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	CardLast4     string    `json:"card_last_4"`
	TxnType       TxnType   `json:"txn_type"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
}

// NewReceipt builds a receipt from a persisted transaction and its owner.
func NewReceipt(account *Account, txn *Transaction) *Receipt {
	return &Receipt{
		TransactionID: txn.ID,
		Timestamp:     txn.CreatedAt,
		CardLast4:     account.CardLast4(),
		TxnType:       txn.Type,
		Amount:        txn.Amount,
		NewBalance:    txn.BalanceAfter,
	}
}
