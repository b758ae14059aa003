package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/blnk-atm/model"
)

const transactionColumns = "id, account_id, txn_type, amount, balance_after, created_at"

var tracer = otel.Tracer("atm.database")

// RecordTransactionAndUpdateBalance writes the new balance and appends the
// ledger entry inside one SQL transaction. The balance update is conditional
// on account.Version so a stale read can never overwrite a newer balance;
// when that happens ErrBalanceConflict is returned and nothing is written.
// On success account.Balance and account.Version reflect the stored row.
func (d Datasource) RecordTransactionAndUpdateBalance(ctx context.Context, account *model.Account, txnType model.TxnType, amount, newBalance int64) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Saving transaction to db")
	defer span.End()

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "failed to begin transaction")
	}

	// Rollback is a no-op once the transaction is committed
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	result, err := tx.ExecContext(ctx,
		d.rebind(`UPDATE accounts SET balance = ?, version = version + 1 WHERE id = ? AND version = ?`),
		newBalance, account.ID, account.Version,
	)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "failed to update balance")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return nil, errors.Wrapf(model.ErrBalanceConflict, "account with ID '%d' may have been updated by another transaction", account.ID)
	}

	txn := &model.Transaction{
		AccountID:    account.ID,
		Type:         txnType,
		Amount:       amount,
		BalanceAfter: newBalance,
		CreatedAt:    now(),
	}

	txn.ID, err = d.insertReturningID(ctx, tx,
		`INSERT INTO transactions (account_id, txn_type, amount, balance_after, created_at) VALUES (?, ?, ?, ?, ?)`,
		txn.AccountID, string(txn.Type), txn.Amount, txn.BalanceAfter, txn.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "failed to record transaction")
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return nil, storageError(err, "failed to commit transaction")
	}

	account.Balance = newBalance
	account.Version++
	return txn, nil
}

// ListRecentTransactions returns at most limit entries for the account,
// newest first. Entries sharing a timestamp are ordered by id.
func (d Datasource) ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		return []model.Transaction{}, nil
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.Conn.QueryContext(ctx, d.rebind(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), accountID, limit)
	if err != nil {
		return nil, storageError(err, "failed to retrieve transactions")
	}
	defer rows.Close()

	transactions := make([]model.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, storageError(err, "failed to scan transaction data")
		}
		transactions = append(transactions, *txn)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError(err, "error occurred while iterating over transactions")
	}

	return transactions, nil
}

// GetTransaction retrieves a ledger entry. An entry owned by a different
// account is reported as not found.
func (d Datasource) GetTransaction(ctx context.Context, accountID, transactionID int64) (*model.Transaction, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	row := d.Conn.QueryRowContext(ctx, d.rebind(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND account_id = ?
	`), transactionID, accountID)

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(model.ErrTransactionNotFound, "transaction with ID '%d' not found", transactionID)
		}
		return nil, storageError(err, "failed to retrieve transaction")
	}
	return txn, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	txn := &model.Transaction{}
	var txnType string
	err := row.Scan(&txn.ID, &txn.AccountID, &txnType, &txn.Amount, &txn.BalanceAfter, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	txn.Type = model.TxnType(txnType)
	txn.CreatedAt = txn.CreatedAt.UTC()
	return txn, nil
}
