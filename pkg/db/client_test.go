package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteClient(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, config.DBConfig{Driver: config.DBDriverSQLite, DSN: "file::memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(ctx))
	assert.Equal(t, "sqlite3", client.Dialect())

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NotNil(t, sqlDB)
}

func TestNewRejectsMissingDSNAndUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DBDriverSQLite}, nil)
	require.Error(t, err)

	_, err = New(context.Background(), config.DBConfig{Driver: "oracle", DSN: "x"}, nil)
	require.Error(t, err)
}
