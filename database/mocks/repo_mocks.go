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
package mocks

import (
	"context"

	"github.com/blnkfinance/blnk-atm/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Account methods

func (m *MockDataSource) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockDataSource) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so callers mutating the account do not leak into later calls
	account := *args.Get(0).(*model.Account)
	return &account, args.Error(1)
}

func (m *MockDataSource) FindAccountByCredentials(ctx context.Context, cardNumber, pin string) (*model.Account, error) {
	args := m.Called(ctx, cardNumber, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	account := *args.Get(0).(*model.Account)
	return &account, args.Error(1)
}

// Transaction methods

func (m *MockDataSource) RecordTransactionAndUpdateBalance(ctx context.Context, account *model.Account, txnType model.TxnType, amount, newBalance int64) (*model.Transaction, error) {
	args := m.Called(ctx, account, txnType, amount, newBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	txn := args.Get(0).(*model.Transaction)
	if args.Error(1) == nil {
		account.Balance = newBalance
		account.Version++
	}
	return txn, args.Error(1)
}

func (m *MockDataSource) ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetTransaction(ctx context.Context, accountID, transactionID int64) (*model.Transaction, error) {
	args := m.Called(ctx, accountID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockDataSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
