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

package database

import (
	"context"

	"github.com/blnkfinance/blnk-atm/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	account     // Interface for account-related operations
	transaction // Interface for ledger-related operations
	Close() error
}

// account defines methods for handling accounts.
type account interface {
	CreateAccount(ctx context.Context, account model.Account) (model.Account, error)              // Provisions a new account
	GetAccount(ctx context.Context, id int64) (*model.Account, error)                             // Retrieves an account by ID
	FindAccountByCredentials(ctx context.Context, cardNumber, pin string) (*model.Account, error) // Looks up an account by card number and PIN
}

// transaction defines methods for handling ledger entries.
type transaction interface {
	RecordTransactionAndUpdateBalance(ctx context.Context, account *model.Account, txnType model.TxnType, amount, newBalance int64) (*model.Transaction, error) // Atomically writes the balance and appends the entry
	ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]model.Transaction, error)                                                        // Most recent entries first
	GetTransaction(ctx context.Context, accountID, transactionID int64) (*model.Transaction, error)                                                             // Retrieves an entry owned by the account
}
