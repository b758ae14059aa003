package atm

import (
	"context"

	"github.com/blnkfinance/blnk-atm/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ListHistory returns the account's most recent transactions, newest first.
// A non-positive limit uses the configured default; larger requests are
// capped at MaxHistoryLimit.
func (a *ATM) ListHistory(ctx context.Context, accountID int64, pin string, limit int) ([]model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ListHistory", trace.WithAttributes(
		attribute.Int64("account.id", accountID),
		attribute.Int("history.limit", limit),
	))
	defer span.End()

	if _, err := a.authorize(ctx, accountID, pin); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = a.historyLimit
	}
	limit = min(limit, MaxHistoryLimit)

	transactions, err := a.datasource.ListRecentTransactions(ctx, accountID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return transactions, nil
}
