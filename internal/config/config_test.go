package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadEnvFile(t *testing.T) {
	path := writeFile(t, `# database
DB_DRIVER=mysql
DB_HOST = db.internal
export DB_USER=app
DB_PASSWORD="p#ss word"
CACHE_URI=mongodb://cache:27017/?replicaSet=rs0

CACHE_INDEX=3
`)

	env, err := ReadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", env["DB_DRIVER"])
	assert.Equal(t, "db.internal", env["DB_HOST"])
	assert.Equal(t, "app", env["DB_USER"])
	assert.Equal(t, "p#ss word", env["DB_PASSWORD"])
	assert.Equal(t, "mongodb://cache:27017/?replicaSet=rs0", env["CACHE_URI"])
	assert.Equal(t, "3", env["CACHE_INDEX"])
}

func TestReadEnvFileTrailingBackslashAndInlineComment(t *testing.T) {
	path := writeFile(t, `DB_PASSWORD=se\
DB_NAME=app.db
CACHE_HOST=redis.local # primary
CACHE_URI=mongodb://cache:27017/#frag
`)

	env, err := ReadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, `se\`, env["DB_PASSWORD"])
	assert.Equal(t, "app.db", env["DB_NAME"])
	assert.Equal(t, "redis.local", env["CACHE_HOST"])
	assert.Equal(t, "mongodb://cache:27017/#frag", env["CACHE_URI"])
}

func TestWriteEnvFileQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	want := Env{
		"PLAIN":   "value",
		"EMPTY":   "",
		"HASH":    `p#ss "word"`,
		"SPACES":  "  padded ",
		"BACK":    `trailing\`,
		"SEMI":    "a ;b",
		"TICK":    "a`b",
		"ESCAPED": `x\"y`,
	}

	require.NoError(t, WriteEnvFile(path, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"""`)
	assert.Contains(t, string(raw), "PLAIN=value\n")
	assert.Contains(t, string(raw), `HASH="p#ss \"word\""`)

	got, err := ReadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Error(t, WriteEnvFile(path, Env{"MULTI": "a\nb"}))
}

func TestReadEnvFileMissing(t *testing.T) {
	_, err := ReadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestLoadEnvProcessWins(t *testing.T) {
	path := writeFile(t, "DB_NAME=from-file.db\nDB_DRIVER=sqlite\n")
	t.Setenv("DB_NAME", "from-process.db")

	env, err := LoadEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "from-process.db", env["DB_NAME"])
	assert.Equal(t, "sqlite", env["DB_DRIVER"])
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(Env{})
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(Env{
		KeyDBDriver:     "mysql",
		KeyDBPort:       "3307",
		KeyDBName:       "app",
		KeyDBTimeout:    "10",
		KeyCacheDriver:  "bolt",
		KeyCachePath:    "/tmp/c.bolt",
		KeyCacheTimeout: "250ms",
		KeyLogLevel:     "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, "app", cfg.Database.Name)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "bolt", cfg.Cache.Driver)
	assert.Equal(t, "/tmp/c.bolt", cfg.Cache.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  Env
	}{
		{"bad port", Env{KeyDBPort: "abc"}},
		{"bad duration", Env{KeyCacheTimeout: "soon"}},
		{"unknown db driver", Env{KeyDBDriver: "oracle"}},
		{"unknown cache driver", Env{KeyCacheDriver: "memcached"}},
		{"redis port range", Env{KeyCachePort: "70000"}},
		{"negative index", Env{KeyCacheIndex: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".env")

	cfg := DefaultConfig()
	cfg.Database.Password = "s3cret"
	cfg.Cache.Driver = "bolt"
	cfg.Cache.Index = 2

	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveAndLoadEmptyPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	cfg := DefaultConfig()
	cfg.Cache.Prefix = ""

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Cache.Prefix)
	assert.Equal(t, cfg, loaded)
}

func TestYAMLMasksSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Password = "hunter2"

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Equal(t, "hunter2", cfg.Database.Password)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, "********", back.Database.Password)
	assert.Equal(t, 5*time.Second, back.Database.Timeout)
}
