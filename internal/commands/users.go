package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AI2HU/dbconsole/internal/cache"
	"github.com/AI2HU/dbconsole/internal/cli"
	"github.com/AI2HU/dbconsole/internal/db"
	"github.com/AI2HU/dbconsole/internal/logger"
	"github.com/AI2HU/dbconsole/internal/models"
)

// UserCacheTTL is how long a looked-up user stays cached.
const UserCacheTTL = 10 * time.Minute

// Users returns the user management commands.
func Users() []cli.Command {
	return []cli.Command{
		{
			Name:        "user:add",
			Description: "Create a user inside a transaction and cache it",
			Flags: func(fs *pflag.FlagSet) {
				fs.String("username", "", "username (required)")
				fs.String("email", "", "email address (required)")
			},
			Run: runUserAdd,
		},
		{
			Name:        "user:show",
			Description: "Show a user, reading through the cache",
			Usage:       "<username>",
			Args:        cobra.ExactArgs(1),
			Run:         runUserShow,
		},
		{
			Name:        "user:list",
			Description: "List users",
			Flags: func(fs *pflag.FlagSet) {
				fs.Int("limit", 20, "maximum number of users (0 for all)")
				fs.String("where", "", "raw SQL filter copied into the query as written (trusted operator input), e.g. \"created_at > 1700000000\"")
				fs.String("order", "id ASC", "ORDER BY clause")
			},
			Run: runUserList,
		},
		{
			Name:        "user:update",
			Description: "Change the email of a user",
			Usage:       "<id>",
			Args:        cobra.ExactArgs(1),
			Flags: func(fs *pflag.FlagSet) {
				fs.String("email", "", "new email address (required)")
			},
			Run: runUserUpdate,
		},
		{
			Name:        "user:delete",
			Description: "Delete a user and evict it from the cache",
			Usage:       "<id>",
			Args:        cobra.ExactArgs(1),
			Run:         runUserDelete,
		},
		{
			Name:        "user:seed",
			Description: "Insert generated users in batches",
			Flags: func(fs *pflag.FlagSet) {
				fs.Int("count", 10, "number of users to generate")
				fs.Int("batch", db.DefaultBatchSize, "rows per INSERT statement")
			},
			Run: runUserSeed,
		},
	}
}

func userKey(username string) string {
	return "user:" + username
}

func cacheUser(ctx context.Context, c cache.Cache, u *models.User) {
	data, err := json.Marshal(u)
	if err != nil {
		logger.Warning("Failed to encode user %s for cache: %v", u.Username, err)
		return
	}
	if err := c.Set(ctx, userKey(u.Username), string(data), UserCacheTTL); err != nil {
		logger.Warning("Failed to cache user %s: %v", u.Username, err)
	}
}

func evictUser(ctx context.Context, c cache.Cache, username string) {
	if err := c.Delete(ctx, userKey(username)); err != nil {
		logger.Warning("Failed to evict user %s from cache: %v", username, err)
	}
}

func findUser(ctx context.Context, store db.Store, where db.Conditions) (*models.User, error) {
	row, err := store.Find(ctx, models.UsersTable, where, nil, "")
	if err != nil {
		return nil, err
	}
	return models.UserFromRow(row)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id: %s", raw)
	}
	return id, nil
}

func printUser(inv *cli.Invocation, u *models.User) {
	inv.Println(cli.FormatLabelValue("ID:", strconv.FormatInt(u.ID, 10)))
	inv.Println(cli.FormatLabelValue("Username:", u.Username))
	inv.Println(cli.FormatLabelValue("Email:", u.Email))
	inv.Println(cli.FormatLabelValue("Created:", u.CreatedAt.Format(time.RFC3339)))
}

func runUserAdd(ctx context.Context, inv *cli.Invocation) error {
	username, _ := inv.Flags.GetString("username")
	email, _ := inv.Flags.GetString("email")
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return fmt.Errorf("--username and --email are required")
	}

	h := inv.App.Helper()
	u := &models.User{Username: username, Email: email, CreatedAt: time.Now().UTC().Truncate(time.Second)}

	if err := h.Begin(ctx); err != nil {
		return err
	}

	created, err := func() (*models.User, error) {
		_, err := h.Find(ctx, models.UsersTable, db.Fields(db.F("username", username)), []string{"id"}, "")
		if err == nil {
			return nil, fmt.Errorf("username %s is already taken", username)
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}

		id, err := h.Insert(ctx, models.UsersTable, u.Fields())
		if err != nil {
			return nil, err
		}
		return findUser(ctx, h, db.Fields(db.F("id", id)))
	}()
	if err != nil {
		if rbErr := h.Rollback(); rbErr != nil {
			logger.Error("Failed to rollback: %v", rbErr)
		}
		inv.Println(cli.FormatError("❌ Transaction failed, rolled back: " + err.Error()))
		return cli.Exit(1, nil)
	}

	if err := h.Commit(); err != nil {
		return err
	}

	cacheUser(ctx, inv.App.Cache, created)

	inv.Println(cli.FormatSuccess("✅ User created"))
	printUser(inv, created)
	return nil
}

func runUserShow(ctx context.Context, inv *cli.Invocation) error {
	username := inv.Args[0]

	raw, err := inv.App.Cache.Get(ctx, userKey(username))
	switch {
	case err == nil:
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			printUser(inv, &u)
			inv.Println(cli.FormatMeta("(from cache)"))
			return nil
		}
		logger.Warning("Ignoring undecodable cache entry for %s", username)
	case !errors.Is(err, cache.ErrMiss):
		logger.Warning("Cache lookup for %s failed: %v", username, err)
	}

	u, err := findUser(ctx, inv.App.Helper(), db.Fields(db.F("username", username)))
	if errors.Is(err, db.ErrNotFound) {
		inv.Println(cli.FormatWarning("No user named " + username))
		return cli.Exit(3, nil)
	}
	if err != nil {
		return err
	}

	cacheUser(ctx, inv.App.Cache, u)
	printUser(inv, u)
	inv.Println(cli.FormatMeta("(from database)"))
	return nil
}

func runUserList(ctx context.Context, inv *cli.Invocation) error {
	limit, _ := inv.Flags.GetInt("limit")
	where, _ := inv.Flags.GetString("where")
	order, _ := inv.Flags.GetString("order")

	rows, err := inv.App.Helper().Select(ctx, models.UsersTable, db.Fragment(where), nil, order, limit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		inv.Println(cli.FormatWarning("No users found"))
		return nil
	}

	inv.Printf("%s\n", cli.FormatHeader(fmt.Sprintf("%-6s %-24s %-32s %s", "ID", "USERNAME", "EMAIL", "CREATED")))
	for _, row := range rows {
		u, err := models.UserFromRow(row)
		if err != nil {
			return err
		}
		inv.Printf("%-6d %-24s %-32s %s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format(time.RFC3339))
	}
	inv.Println(cli.FormatCountLabel("Total:", len(rows)))
	return nil
}

func runUserUpdate(ctx context.Context, inv *cli.Invocation) error {
	id, err := parseID(inv.Args[0])
	if err != nil {
		return err
	}
	email, _ := inv.Flags.GetString("email")
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("--email is required")
	}

	h := inv.App.Helper()
	u, err := findUser(ctx, h, db.Fields(db.F("id", id)))
	if errors.Is(err, db.ErrNotFound) {
		inv.Println(cli.FormatWarning(fmt.Sprintf("No user with id %d", id)))
		return cli.Exit(3, nil)
	}
	if err != nil {
		return err
	}

	n, err := h.Update(ctx, models.UsersTable, db.Match(map[string]any{"id": id}), db.Record{"email": email})
	if err != nil {
		return err
	}

	evictUser(ctx, inv.App.Cache, u.Username)
	inv.Println(cli.FormatCountLabel("Updated rows:", int(n)))
	return nil
}

func runUserDelete(ctx context.Context, inv *cli.Invocation) error {
	id, err := parseID(inv.Args[0])
	if err != nil {
		return err
	}

	h := inv.App.Helper()
	u, err := findUser(ctx, h, db.Fields(db.F("id", id)))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}

	n, err := h.Delete(ctx, models.UsersTable, db.Fields(db.F("id", id)))
	if err != nil {
		return err
	}

	if u != nil {
		evictUser(ctx, inv.App.Cache, u.Username)
	}
	inv.Println(cli.FormatCountLabel("Deleted rows:", int(n)))
	return nil
}

func runUserSeed(ctx context.Context, inv *cli.Invocation) error {
	count, _ := inv.Flags.GetInt("count")
	batch, _ := inv.Flags.GetInt("batch")
	if count <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	now := time.Now().UTC().Unix()
	records := make([]db.Record, count)
	for i := range records {
		tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		records[i] = db.Record{
			"username":   "user_" + tag,
			"email":      tag + "@example.com",
			"created_at": now,
		}
	}

	n, err := inv.App.Helper().BatchInsert(ctx, models.UsersTable, records, batch)
	if err != nil {
		inv.Println(cli.FormatError("❌ Seeding failed, nothing was inserted: " + err.Error()))
		return cli.Exit(1, nil)
	}

	inv.Println(cli.FormatSuccess(fmt.Sprintf("✅ Inserted %d users", n)))
	return nil
}
