package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/AI2HU/dbconsole/internal/app"
	"github.com/AI2HU/dbconsole/internal/config"
)

// InitCommand is the interactive wizard that writes the env file.
func InitCommand() Command {
	return Command{
		Name:        "init",
		Description: "Create the env file with database and cache settings",
		SkipConfig:  true,
		Flags: func(fs *pflag.FlagSet) {
			fs.Bool("force", false, "overwrite an existing env file without asking")
			fs.Bool("skip-check", false, "do not test the connections before saving")
		},
		Run: runInit,
	}
}

func runInit(ctx context.Context, inv *Invocation) error {
	reader := bufio.NewReader(inv.In)
	out := inv.Out

	inv.Println("🚀 Welcome to dbconsole setup")
	inv.Println("============================")
	inv.Println()

	force, _ := inv.Flags.GetBool("force")
	skipCheck, _ := inv.Flags.GetBool("skip-check")

	// Check if config already exists
	if config.Exists(inv.EnvFile) && !force {
		inv.Printf("Env file already exists at: %s\n", inv.EnvFile)
		confirmed, err := promptYesNo(reader, out, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			inv.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	ask := func(prompt, def string, validator func(string) (string, error)) (string, error) {
		return promptValidated(reader, out, fmt.Sprintf("%s [%s]: ", prompt, def), def, validator)
	}
	askInt := func(prompt string, def int, validator func(string) (string, error)) (int, error) {
		v, err := ask(prompt, strconv.Itoa(def), validator)
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(v)
	}
	askDuration := func(prompt string, def time.Duration) (time.Duration, error) {
		v, err := ask(prompt, def.String(), validateDuration)
		if err != nil {
			return 0, err
		}
		return time.ParseDuration(v)
	}

	var err error

	// Database configuration
	inv.Println("\n📊 Database Configuration")
	inv.Println("--------------------------")

	dbc := &cfg.Database
	if dbc.Driver, err = ask("Database driver (sqlite/mysql)", dbc.Driver, validateChoice("sqlite", "mysql")); err != nil {
		return err
	}

	switch dbc.Driver {
	case "sqlite":
		if dbc.Name, err = ask("Database file", dbc.Name, validateRequired); err != nil {
			return err
		}
	case "mysql":
		if dbc.Host, err = ask("Host", dbc.Host, validateRequired); err != nil {
			return err
		}
		if dbc.Port, err = askInt("Port", dbc.Port, validatePort); err != nil {
			return err
		}
		if dbc.Name, err = ask("Database name", "dbconsole", validateRequired); err != nil {
			return err
		}
		if dbc.User, err = promptOptional(reader, out, "User []: ", ""); err != nil {
			return err
		}
		if dbc.Password, err = promptOptional(reader, out, "Password []: ", ""); err != nil {
			return err
		}
		if dbc.Charset, err = ask("Charset", dbc.Charset, validateRequired); err != nil {
			return err
		}
	}

	if dbc.Timeout, err = askDuration("Connect timeout", dbc.Timeout); err != nil {
		return err
	}

	// Cache configuration
	inv.Println("\n🗄️  Cache Configuration")
	inv.Println("-----------------------")

	cc := &cfg.Cache
	if cc.Driver, err = ask("Cache driver (redis/bolt/mongodb)", cc.Driver, validateChoice("redis", "bolt", "mongodb")); err != nil {
		return err
	}

	switch cc.Driver {
	case "redis":
		if cc.Host, err = ask("Host", cc.Host, validateRequired); err != nil {
			return err
		}
		if cc.Port, err = askInt("Port", cc.Port, validatePort); err != nil {
			return err
		}
		if cc.Password, err = promptOptional(reader, out, "Password []: ", ""); err != nil {
			return err
		}
		if cc.Index, err = askInt("Database index", cc.Index, validateIndex); err != nil {
			return err
		}
	case "bolt":
		if cc.Path, err = ask("Cache file", cc.Path, validateRequired); err != nil {
			return err
		}
	case "mongodb":
		if cc.URI, err = ask("MongoDB URI", cc.URI, validateRequired); err != nil {
			return err
		}
		if cc.Database, err = ask("Database name", cc.Database, validateRequired); err != nil {
			return err
		}
	}

	if cc.Prefix, err = promptOptional(reader, out, fmt.Sprintf("Key prefix [%s]: ", cc.Prefix), cc.Prefix); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Test connections
	if !skipCheck {
		inv.Println("\n🔌 Testing connections...")

		probe := app.New()
		probe.Config = cfg
		if err := probe.Connect(ctx); err != nil {
			inv.Printf("❌ %v\n", err)
			inv.Println("\nPlease check your settings and try again.")
			return err
		}
		if err := probe.Close(); err != nil {
			return err
		}

		inv.Println(FormatSuccess("✅ Database and cache connections successful!"))
	}

	// Save configuration
	inv.Println("\n💾 Saving configuration...")
	if err := cfg.Save(inv.EnvFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	inv.Printf("✅ Configuration saved to: %s\n", inv.EnvFile)

	// Summary
	inv.Println("\n📋 Configuration Summary")
	inv.Println("========================")
	inv.Println(FormatLabelValue("Database:", dbc.Driver+" ("+dbc.Name+")"))
	inv.Println(FormatLabelValue("Cache:", cc.Driver))
	inv.Println()
	inv.Println("Next steps:")
	inv.Println("  1. Install the schema: dbconsole migrate")
	inv.Println("  2. Check connections:  dbconsole status")
	inv.Println("  3. Add a user:         dbconsole user:add --username alice --email alice@example.com")

	return nil
}
