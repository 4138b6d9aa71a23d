package db

import (
	"path/filepath"
	"testing"

	"case_docket_app_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type widget struct {
	ID   uint
	Name string
}

func TestTursoDSN(t *testing.T) {
	assert.Equal(t, "libsql://db.turso.io", TursoDSN("libsql://db.turso.io", ""))
	assert.Equal(t, "libsql://db.turso.io?authToken=abc", TursoDSN("libsql://db.turso.io", "abc"))
	assert.Equal(t, "libsql://db.turso.io?tls=1&authToken=abc", TursoDSN("libsql://db.turso.io?tls=1", "abc"))
}

func TestOpenLocal(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		DBPath:      filepath.Join(t.TempDir(), "nested", "cases.db"),
	}

	database, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(database)

	require.NoError(t, AutoMigrate(database, &widget{}))
	require.NoError(t, database.Create(&widget{Name: "gear"}).Error)

	var fk int
	require.NoError(t, database.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestAutoMigrateNil(t *testing.T) {
	assert.Error(t, AutoMigrate(nil, &widget{}))
	assert.NoError(t, Close(nil))
}
