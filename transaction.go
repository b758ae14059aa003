package atm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/blnk-atm/internal/notification"
	"github.com/blnkfinance/blnk-atm/model"
)

// Withdraw removes amount (minor units) from the account. The balance may
// reach zero but never go below it.
func (a *ATM) Withdraw(ctx context.Context, accountID int64, amount int64, pin string) (*model.Transaction, error) {
	return a.applyTransaction(ctx, accountID, model.TxnWithdraw, amount, pin)
}

// Deposit adds amount (minor units) to the account.
func (a *ATM) Deposit(ctx context.Context, accountID int64, amount int64, pin string) (*model.Transaction, error) {
	return a.applyTransaction(ctx, accountID, model.TxnDeposit, amount, pin)
}

// applyTransaction runs the checks and the write while holding the account
// lock, so the balance that was checked is the balance that gets replaced.
// A version conflict means another writer got in anyway; the account is
// reloaded and the whole sequence retried.
func (a *ATM) applyTransaction(ctx context.Context, accountID int64, txnType model.TxnType, amount int64, pin string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ApplyTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("account.id", accountID),
		attribute.String("transaction.type", string(txnType)),
		attribute.Int64("transaction.amount", amount),
	)

	release, err := a.locker.Acquire(ctx, accountID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(model.ErrStorage, "failed to acquire lock on account %d: %v", accountID, err)
	}
	defer release()

	var (
		account *model.Account
		txn     *model.Transaction
	)
	for attempt := 1; ; attempt++ {
		account, txn, err = a.tryApply(ctx, accountID, txnType, amount, pin)
		if err == nil {
			break
		}

		if !errors.Is(err, model.ErrBalanceConflict) {
			span.RecordError(err)
			if errors.Is(err, model.ErrStorage) {
				notification.NotifyError(err)
			}
			return nil, err
		}

		if attempt >= maxWriteAttempts {
			err = errors.Wrapf(model.ErrStorage, "account %d changed during %d write attempts: %v", accountID, attempt, err)
			span.RecordError(err)
			notification.NotifyError(err)
			return nil, err
		}
		logrus.Warnf("balance conflict on account %d, retrying (attempt %d)", accountID, attempt)
	}

	logrus.WithFields(logrus.Fields{
		"account_id":     accountID,
		"transaction_id": txn.ID,
		"txn_type":       txnType,
		"amount":         model.FormatAmount(amount),
		"balance_after":  model.FormatAmount(txn.BalanceAfter),
	}).Info("transaction applied")

	a.postTransactionActions(ctx, account, txn)
	return txn, nil
}

func (a *ATM) tryApply(ctx context.Context, accountID int64, txnType model.TxnType, amount int64, pin string) (*model.Account, *model.Transaction, error) {
	account, err := a.authorize(ctx, accountID, pin)
	if err != nil {
		return nil, nil, err
	}

	if amount <= 0 {
		return nil, nil, errors.Wrapf(model.ErrInvalidAmount, "%s must be greater than zero", model.FormatAmount(amount))
	}

	if txnType == model.TxnWithdraw && account.Balance < amount {
		return nil, nil, errors.Wrapf(model.ErrInsufficientFunds, "balance %s is less than %s", model.FormatAmount(account.Balance), model.FormatAmount(amount))
	}

	newBalance := txnType.Apply(account.Balance, amount)
	if txnType == model.TxnDeposit && newBalance < account.Balance {
		return nil, nil, errors.Wrap(model.ErrInvalidAmount, "deposit would overflow the balance")
	}

	txn, err := a.datasource.RecordTransactionAndUpdateBalance(ctx, account, txnType, amount, newBalance)
	if err != nil {
		return nil, nil, err
	}
	return account, txn, nil
}

// postTransactionActions runs side effects that must never fail an applied
// transaction.
func (a *ATM) postTransactionActions(ctx context.Context, account *model.Account, txn *model.Transaction) {
	if a.receipts != nil {
		receipt := model.NewReceipt(account, txn)
		if err := a.receipts.Set(ctx, receiptCacheKey(account.ID, txn.ID), receipt, receiptCacheTTL); err != nil {
			logrus.Errorf("failed to cache receipt for transaction %d: %v", txn.ID, err)
		}
	}

	if a.webhooks != nil {
		if err := a.webhooks.SendWebhook(ctx, NewTransactionWebhook(account, txn)); err != nil {
			notification.NotifyError(errors.Wrapf(err, "failed to enqueue webhook for transaction %d", txn.ID))
		}
	}
}
