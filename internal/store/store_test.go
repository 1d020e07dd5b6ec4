package store

import (
	"path/filepath"
	"testing"

	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_PreferencesTableExists(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.sql.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "preferences",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "preferences", name)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "agentchat.db")
	db, err := Open(path, logging.New(nil, "silent"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.FileExists(t, path)
}

// --- KV tests, run against both implementations ---

func kvImpls(t *testing.T) map[string]KV {
	return map[string]KV{
		"sqlite": NewSQLitePrefs(testDB(t)),
		"memory": NewMemoryPrefs(),
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range kvImpls(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := kv.Get(KeyClientID)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestKV_SetGetOverwrite(t *testing.T) {
	for name, kv := range kvImpls(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set(KeyTheme, "dark"))
			v, ok, err := kv.Get(KeyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", v)

			require.NoError(t, kv.Set(KeyTheme, "light"))
			v, _, err = kv.Get(KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", v)
		})
	}
}

func TestKV_Delete(t *testing.T) {
	for name, kv := range kvImpls(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set(KeyClientID, "user_1"))
			require.NoError(t, kv.Delete(KeyClientID))
			_, ok, err := kv.Get(KeyClientID)
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting again is fine
			assert.NoError(t, kv.Delete(KeyClientID))
		})
	}
}

func TestSQLitePrefs_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentchat.db")
	log := logging.New(nil, "silent")

	db, err := Open(path, log)
	require.NoError(t, err)
	require.NoError(t, NewSQLitePrefs(db).Set(KeyClientID, "user_abc"))
	require.NoError(t, db.Close())

	db, err = Open(path, log)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewSQLitePrefs(db).Get(KeyClientID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user_abc", v)
}

func TestOpenPrefs(t *testing.T) {
	log := logging.New(nil, "silent")

	kv, closer, err := OpenPrefs("memory", "", log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryPrefs{}, kv)
	assert.NoError(t, closer.Close())

	kv, closer, err = OpenPrefs("sqlite", filepath.Join(t.TempDir(), "p.db"), log)
	require.NoError(t, err)
	assert.IsType(t, &SQLitePrefs{}, kv)
	assert.NoError(t, closer.Close())

	_, _, err = OpenPrefs("postgres", "", log)
	assert.Error(t, err)
}
