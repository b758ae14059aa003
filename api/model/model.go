/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/blnkfinance/blnk-atm/model"
)

type Login struct {
	CardNumber string `json:"card_number"`
	PIN        string `json:"pin"`
}

type PINRequest struct {
	PIN string `json:"pin"`
}

// TransactionRequest carries a withdraw or deposit. Amount is a decimal
// string such as "15.50".
type TransactionRequest struct {
	Amount string `json:"amount"`
	PIN    string `json:"pin"`
}

type HistoryRequest struct {
	PIN   string `json:"pin"`
	Limit int    `json:"limit"`
}

func (l *Login) ValidateLogin() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.CardNumber, validation.Required, validation.Length(model.CardNumberLength, model.CardNumberLength), is.Digit),
		validation.Field(&l.PIN, validation.Required, validation.Length(model.PINLength, model.PINLength), is.Digit),
	)
}

func (p *PINRequest) ValidatePIN() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.PIN, validation.Required),
	)
}

func (t *TransactionRequest) ValidateTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Amount, validation.Required, is.Float),
		validation.Field(&t.PIN, validation.Required),
	)
}

// MinorUnits parses Amount. Validation only checks the format; sign and
// precision rules are enforced by model.ParseAmount.
func (t *TransactionRequest) MinorUnits() (int64, error) {
	return model.ParseAmount(t.Amount)
}

func (h *HistoryRequest) ValidateHistory() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.PIN, validation.Required),
		validation.Field(&h.Limit, validation.Min(0), validation.Max(100)),
	)
}

type LoginResponse struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
}

type AccountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CardLast4 string `json:"card_last_4"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type Transaction struct {
	ID           int64         `json:"id"`
	TxnType      model.TxnType `json:"txn_type"`
	Amount       string        `json:"amount"`
	BalanceAfter string        `json:"balance_after"`
	Timestamp    time.Time     `json:"timestamp"`
}

type Receipt struct {
	TransactionID int64         `json:"transaction_id"`
	Timestamp     time.Time     `json:"timestamp"`
	CardLast4     string        `json:"card_last_4"`
	TxnType       model.TxnType `json:"txn_type"`
	Amount        string        `json:"amount"`
	NewBalance    string        `json:"new_balance"`
}

type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
	Receipt     *Receipt    `json:"receipt,omitempty"`
}

func ToAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{ID: account.ID, Name: account.Name, CardLast4: account.CardLast4()}
}

func ToTransaction(txn model.Transaction) Transaction {
	return Transaction{
		ID:           txn.ID,
		TxnType:      txn.Type,
		Amount:       model.FormatAmount(txn.Amount),
		BalanceAfter: model.FormatAmount(txn.BalanceAfter),
		Timestamp:    txn.CreatedAt,
	}
}

func ToTransactions(txns []model.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, txn := range txns {
		out = append(out, ToTransaction(txn))
	}
	return out
}

func ToReceipt(receipt *model.Receipt) Receipt {
	return Receipt{
		TransactionID: receipt.TransactionID,
		Timestamp:     receipt.Timestamp,
		CardLast4:     receipt.CardLast4,
		TxnType:       receipt.TxnType,
		Amount:        model.FormatAmount(receipt.Amount),
		NewBalance:    model.FormatAmount(receipt.NewBalance),
	}
}
