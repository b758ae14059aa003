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

package main

import (
	"fmt"
	"os"

	atm "github.com/blnkfinance/blnk-atm"
	"github.com/blnkfinance/blnk-atm/config"
	"github.com/blnkfinance/blnk-atm/database"
	"github.com/blnkfinance/blnk-atm/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "./atm.json"

// ATM represents the CLI application, encapsulating the root Cobra command.
type ATM struct {
	cmd *cobra.Command
}

// atmInstance holds the runtime configuration and, once setup has run, the
// datasource and ATM service built from it.
type atmInstance struct {
	atm        *atm.ATM
	datasource database.IDataSource
	cnf        *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration before any command runs. Connections are
// opened lazily by the commands that need them.
func preRun(app *atmInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf
		return nil
	}
}

// setup connects to the datasource and builds the ATM service.
func (app *atmInstance) setup() error {
	if app.atm != nil {
		return nil
	}

	ds, err := database.NewDataSource(app.cnf)
	if err != nil {
		notification.NotifyError(err)
		return fmt.Errorf("error connecting to datasource: %w", err)
	}

	service, err := atm.NewATMFromConfig(ds, app.cnf)
	if err != nil {
		_ = ds.Close()
		notification.NotifyError(err)
		return err
	}

	app.datasource = ds
	app.atm = service
	return nil
}

// close releases everything setup opened.
func (app *atmInstance) close() {
	if app.atm != nil {
		if err := app.atm.Close(); err != nil {
			logrus.Errorf("error closing atm: %v", err)
		}
	}
	if app.datasource != nil {
		if err := app.datasource.Close(); err != nil {
			logrus.Errorf("error closing datasource: %v", err)
		}
	}
}

// NewCLI initializes the root command and registers every subcommand.
func NewCLI() *ATM {
	app := &atmInstance{}
	configFile := defaultConfigFile

	var rootCmd = &cobra.Command{
		Use:               "atm",
		Short:             "Blnk ATM: a simulated cash machine backed by a ledger",
		SilenceUsage:      true,
		PersistentPreRunE: preRun(app, &configFile),
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "path to the json config file")

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(seedCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &ATM{cmd: rootCmd}
}

// executeCLI runs the root command and exits with a non-zero status on error.
func (a *ATM) executeCLI() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
