package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/AI2HU/dbconsole/internal/db"
)

// MigrateCommand installs the bundled users schema.
func MigrateCommand() Command {
	return Command{
		Name:        "migrate",
		Description: "Install the users schema",
		Flags: func(fs *pflag.FlagSet) {
			fs.Bool("status", false, "only show the current schema version")
		},
		Run: runMigrate,
	}
}

func runMigrate(ctx context.Context, inv *Invocation) error {
	driver := inv.App.Config.Database.Driver
	statusOnly, _ := inv.Flags.GetBool("status")

	if !statusOnly {
		inv.Println("🔄 Running database migrations...")
		if err := db.Migrate(inv.App.DB, driver); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		inv.Println(FormatSuccess("✅ Migrations completed successfully!"))
	}

	version, dirty, err := db.MigrationVersion(inv.App.DB, driver)
	if err != nil {
		return err
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	inv.Println(FormatLabelValue("Schema version:", fmt.Sprintf("%d (%s)", version, state)))
	return nil
}
