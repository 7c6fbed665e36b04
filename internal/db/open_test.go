package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/dbconsole/internal/config"
)

func TestDSNMySQL(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver:   "mysql",
		Host:     "db.internal",
		Port:     3307,
		Name:     "app",
		User:     "app",
		Password: "s3cret",
		Charset:  "utf8mb4",
		Timeout:  3 * time.Second,
	})
	require.NoError(t, err)

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db.internal:3307", mc.Addr)
	assert.Equal(t, "app", mc.DBName)
	assert.Equal(t, "s3cret", mc.Passwd)
	assert.Equal(t, 3*time.Second, mc.Timeout)
	assert.True(t, mc.ClientFoundRows)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDSNSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "app.db")

	dsn, err := DSN(config.DatabaseConfig{Driver: "sqlite", Name: path, Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, path+"?_foreign_keys=on&_busy_timeout=2000", dsn)
	assert.DirExists(t, filepath.Dir(path))
}

func TestDSNUnknownDriver(t *testing.T) {
	_, err := DSN(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
