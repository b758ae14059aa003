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
	"database/sql"

	"github.com/pkg/errors"

	"github.com/blnkfinance/blnk-atm/model"
)

const accountColumns = "id, name, card_number, pin, balance, version, created_at"

// CreateAccount inserts a new account. Accounts are provisioned out of band
// (seed command, tests); the ATM itself never creates them.
func (d Datasource) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	if err := account.Validate(); err != nil {
		return account, err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	account.CreatedAt = now()
	account.Version = 0

	id, err := d.insertReturningID(ctx, d.Conn,
		`INSERT INTO accounts (name, card_number, pin, balance, version, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		account.Name, account.CardNumber, account.PIN, account.Balance, account.Version, account.CreatedAt,
	)
	if err != nil {
		return account, storageError(err, "failed to create account")
	}

	account.ID = id
	return account, nil
}

// GetAccount retrieves an account by its ID.
func (d Datasource) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	row := d.Conn.QueryRowContext(ctx, d.rebind(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(model.ErrAccountNotFound, "account with ID '%d' not found", id)
		}
		return nil, storageError(err, "failed to retrieve account")
	}
	return account, nil
}

// FindAccountByCredentials returns the account holding the given card number
// and PIN. Both must match exactly; the PIN comparison is constant time.
func (d Datasource) FindAccountByCredentials(ctx context.Context, cardNumber, pin string) (*model.Account, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	row := d.Conn.QueryRowContext(ctx, d.rebind(`SELECT `+accountColumns+` FROM accounts WHERE card_number = ?`), cardNumber)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, storageError(err, "failed to retrieve account")
	}

	if !model.SecureCompare(account.PIN, pin) {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	account := &model.Account{}
	err := row.Scan(&account.ID, &account.Name, &account.CardNumber, &account.PIN, &account.Balance, &account.Version, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return account, nil
}
