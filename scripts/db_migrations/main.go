// Command db_migrations applies the embedded schema migrations without
// starting the server. It reads the same environment as ledger-server.
package main

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/migrations"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

func main() {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}
	logger := logging.SetupLogging(env.LogLevel)

	result, err := migrations.Up(sqlconfig.ConnectionString(env))
	if err != nil {
		logger.WithError(err).Fatal("migrations.Up")
		return
	}

	logger.WithFields(logrus.Fields{
		"postgresAddress":      env.PostgresAddress,
		"postgresDB":           env.PostgresDB,
		"preMigrationVersion":  result.PreMigrationVersion,
		"postMigrationVersion": result.PostMigrationVersion,
	}).Info("Migration status")
}
