package main

import (
	"context"
	"errors"

	"github.com/blnkfinance/blnk-atm/database"
	"github.com/blnkfinance/blnk-atm/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// demoAccounts are the card holders provisioned by "atm seed".
var demoAccounts = []model.Account{
	{Name: "John Doe", CardNumber: "1111222233334444", PIN: "1234", Balance: 543210},
	{Name: "Jane Smith", CardNumber: "9999888877776666", PIN: "5678", Balance: 1050075},
}

// seedAccounts provisions each account whose card is not already present and
// returns how many were created.
func seedAccounts(ctx context.Context, ds database.IDataSource, accounts []model.Account) (int, error) {
	created := 0
	for _, account := range accounts {
		_, err := ds.FindAccountByCredentials(ctx, account.CardNumber, account.PIN)
		if err == nil {
			logrus.Infof("account for card %s already exists, skipping", model.MaskCardNumber(account.CardNumber))
			continue
		}
		if !errors.Is(err, model.ErrAccountNotFound) {
			return created, err
		}

		saved, err := ds.CreateAccount(ctx, account)
		if err != nil {
			return created, err
		}
		logrus.WithFields(logrus.Fields{
			"account_id": saved.ID,
			"card":       saved.CardLast4(),
		}).Info("seeded account")
		created++
	}
	return created, nil
}

func seedCommands(app *atmInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "provision the demo card holders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := database.NewDataSource(app.cnf)
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := seedAccounts(cmd.Context(), ds, demoAccounts)
			if err != nil {
				return err
			}
			logrus.Infof("seed complete: %d accounts created", n)
			return nil
		},
	}
	return cmd
}
