package database

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oratoria-api/pkg/config"
)

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "sqlmock")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "oratoria", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=oratoria sslmode=disable", dsn)
}
