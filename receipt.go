package atm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/blnk-atm/model"
)

func receiptCacheKey(accountID, transactionID int64) string {
	return fmt.Sprintf("atm:receipt:%d:%d", accountID, transactionID)
}

// BuildReceipt summarises a transaction of the account. It does not change
// any state. Receipts never change once built, so they are served from the
// receipt cache when one is configured.
func (a *ATM) BuildReceipt(ctx context.Context, accountID, transactionID int64) (*model.Receipt, error) {
	ctx, span := tracer.Start(ctx, "BuildReceipt")
	defer span.End()

	key := receiptCacheKey(accountID, transactionID)
	if a.receipts != nil {
		var cached model.Receipt
		found, err := a.receipts.Get(ctx, key, &cached)
		if err != nil {
			logrus.Errorf("failed to read receipt %s from cache: %v", key, err)
		} else if found {
			return &cached, nil
		}
	}

	account, err := a.datasource.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	txn, err := a.datasource.GetTransaction(ctx, accountID, transactionID)
	if err != nil {
		return nil, err
	}

	receipt := model.NewReceipt(account, txn)
	if a.receipts != nil {
		if err := a.receipts.Set(ctx, key, receipt, receiptCacheTTL); err != nil {
			logrus.Errorf("failed to cache receipt %s: %v", key, err)
		}
	}
	return receipt, nil
}
