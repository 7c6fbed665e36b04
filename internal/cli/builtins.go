package cli

import (
	"context"
	"fmt"
	"time"
)

// Builtins returns the commands every dbconsole binary ships with.
func Builtins() []Command {
	return []Command{
		InitCommand(),
		ConfigCommand(),
		StatusCommand(),
		MigrateCommand(),
	}
}

// ConfigCommand prints the resolved configuration.
func ConfigCommand() Command {
	return Command{
		Name:        "config",
		Description: "Show the resolved configuration as YAML (secrets masked)",
		Standalone:  true,
		Run: func(ctx context.Context, inv *Invocation) error {
			data, err := inv.App.Config.YAML()
			if err != nil {
				return err
			}
			inv.Println(FormatHeader("# " + inv.EnvFile))
			_, err = inv.Out.Write(data)
			return err
		},
	}
}

// StatusCommand pings both connections.
func StatusCommand() Command {
	return Command{
		Name:        "status",
		Description: "Check the database and cache connections",
		Run:         runStatus,
	}
}

func runStatus(ctx context.Context, inv *Invocation) error {
	cfg := inv.App.Config

	inv.Println(FormatHeader("📊 Connection Status"))
	inv.Println(FormatHeader("===================="))

	failed := 0
	check := func(label string, ping func(context.Context) error) {
		start := time.Now()
		if err := ping(ctx); err != nil {
			failed++
			inv.Printf("%s %s\n", FormatLabel(label), FormatError("DOWN: "+err.Error()))
			return
		}
		inv.Printf("%s %s %s\n", FormatLabel(label), FormatSuccess("OK"), FormatMeta(time.Since(start).Round(time.Microsecond).String()))
	}

	check(fmt.Sprintf("Database (%s):", cfg.Database.Driver), inv.App.DB.PingContext)
	check(fmt.Sprintf("Cache (%s):", cfg.Cache.Driver), inv.App.Cache.Ping)

	if failed > 0 {
		return Exit(2, nil)
	}
	return nil
}
