package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/dbconsole/internal/app"
	"github.com/AI2HU/dbconsole/internal/cli"
	"github.com/AI2HU/dbconsole/internal/config"
	"github.com/AI2HU/dbconsole/internal/db"
	"github.com/AI2HU/dbconsole/internal/models"
)

type console struct {
	t   *testing.T
	env string
}

func newConsole(t *testing.T) *console {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Name = filepath.Join(dir, "users.db")
	cfg.Cache.Driver = "bolt"
	cfg.Cache.Path = filepath.Join(dir, "users.bolt")

	env := filepath.Join(dir, ".env")
	require.NoError(t, cfg.Save(env))

	c := &console{t: t, env: env}
	code, out, errOut := c.run("migrate")
	require.Equal(t, 0, code, out+errOut)
	return c
}

// run executes one command the way main does, with a fresh App.
func (c *console) run(args ...string) (int, string, string) {
	c.t.Helper()

	var out, errOut bytes.Buffer
	d := cli.NewDispatcher(app.New())
	d.SetIO(strings.NewReader(""), &out, &errOut)
	require.NoError(c.t, d.Register(cli.Builtins()...))
	require.NoError(c.t, d.Register(Users()...))

	code := d.Run(context.Background(), append(args, "--env", c.env))
	return code, out.String(), errOut.String()
}

func (c *console) countUsers() int {
	c.t.Helper()

	a := app.New()
	require.NoError(c.t, a.LoadConfig(c.env, true))
	require.NoError(c.t, a.Connect(context.Background()))
	defer a.Close()

	rows, err := a.Helper().Select(context.Background(), models.UsersTable, db.Conditions{}, []string{"id"}, "", 0)
	require.NoError(c.t, err)
	return len(rows)
}

func TestUserAddAndShow(t *testing.T) {
	c := newConsole(t)

	code, out, errOut := c.run("user:add", "--username", "alice", "--email", "alice@example.com")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "User created")
	assert.Contains(t, out, "alice@example.com")

	code, out, _ = c.run("user:show", "alice")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "(from cache)")
}

func TestUserAddDuplicateRollsBack(t *testing.T) {
	c := newConsole(t)

	code, _, _ := c.run("user:add", "--username", "bob", "--email", "bob@example.com")
	require.Equal(t, 0, code)

	code, out, _ := c.run("user:add", "--username", "bob", "--email", "other@example.com")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "rolled back")

	code, out, _ = c.run("user:add", "--username", "bobby", "--email", "bob@example.com")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "rolled back")

	assert.Equal(t, 1, c.countUsers())
}

func TestUserAddRequiresFlags(t *testing.T) {
	c := newConsole(t)

	code, _, errOut := c.run("user:add", "--username", "carol")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--username and --email are required")
}

func TestUserShowMissing(t *testing.T) {
	c := newConsole(t)

	code, out, _ := c.run("user:show", "ghost")
	assert.Equal(t, 3, code)
	assert.Contains(t, out, "No user named ghost")
}

func TestUserUpdateEvictsCache(t *testing.T) {
	c := newConsole(t)

	code, _, _ := c.run("user:add", "--username", "dave", "--email", "dave@old.example")
	require.Equal(t, 0, code)

	code, out, errOut := c.run("user:update", "1", "--email", "dave@new.example")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Updated rows:")

	code, out, _ = c.run("user:show", "dave")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "dave@new.example")
	assert.Contains(t, out, "(from database)")

	code, out, _ = c.run("user:show", "dave")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(from cache)")

	code, _, _ = c.run("user:update", "42", "--email", "x@example.com")
	assert.Equal(t, 3, code)
}

func TestUserDelete(t *testing.T) {
	c := newConsole(t)

	code, _, _ := c.run("user:add", "--username", "erin", "--email", "erin@example.com")
	require.Equal(t, 0, code)

	code, out, _ := c.run("user:delete", "99")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Deleted rows:")
	assert.Equal(t, 1, c.countUsers())

	code, _, _ = c.run("user:delete", "1")
	require.Equal(t, 0, code)
	assert.Zero(t, c.countUsers())

	code, out, _ = c.run("user:show", "erin")
	assert.Equal(t, 3, code)
	assert.Contains(t, out, "No user named erin")

	code, _, errOut := c.run("user:delete", "abc")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid user id")
}

func TestUserSeedAndList(t *testing.T) {
	c := newConsole(t)

	code, out, errOut := c.run("user:seed", "--count", "25", "--batch", "10")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Inserted 25 users")
	assert.Equal(t, 25, c.countUsers())

	code, out, _ = c.run("user:list", "--limit", "5")
	require.Equal(t, 0, code)
	assert.Equal(t, 5, strings.Count(out, "@example.com"))

	code, out, _ = c.run("user:list", "--where", "id > 100")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No users found")
}
