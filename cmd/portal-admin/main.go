package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/adapters/backend"
	"github.com/debate-club/portal/internal/adapters/postgres"
	"github.com/debate-club/portal/internal/bootstrap"
	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
	httpx "github.com/debate-club/portal/internal/http"
	"github.com/debate-club/portal/internal/migrate"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultPingTimeout      = 10 * time.Second
)

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Create the Postgres client storage schema",
			run:         runMigrations,
		},
		"purge-storage": {
			name:        "purge-storage",
			description: "Delete expired rows from Postgres client storage",
			run:         runPurgeStorage,
		},
		"menu": {
			name:        "menu",
			description: "Print the dashboard menu a role sees",
			run:         runMenu,
		},
		"routes": {
			name:        "routes",
			description: "Print every protected route and the roles it admits",
			run:         runRoutes,
		},
		"ping-api": {
			name:        "ping-api",
			description: "Check that the club API answers its health endpoint",
			run:         runPingAPI,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portal-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, commands()[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
	DryRun  bool
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "List pending migrations without applying them")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	if opts.DryRun {
		pending, pendErr := migrate.Pending(ctx, db)
		if pendErr != nil {
			return fmt.Errorf("list pending migrations: %w", pendErr)
		}
		if len(pending) == 0 {
			return writeln(cmdCtx.Out, "No pending migrations.")
		}
		for _, f := range pending {
			if wErr := writef(cmdCtx.Out, "pending: %s\n", f); wErr != nil {
				return wErr
			}
		}
		return nil
	}

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return migrateErr
	}
	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func runPurgeStorage(cmdCtx *commandContext, _ []string) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	store := postgres.NewClientStorage(postgres.ClientStorageOptions{DB: db, TTL: cmdCtx.Config.Storage.TTL})
	n, err := store.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Purged %d expired rows.\n", n)
}

type menuOptions struct {
	Role   string
	Policy menu.UnknownRolePolicy
}

func parseMenuFlags(args []string, cfg config.AppConfig) (menuOptions, error) {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	policy := string(cfg.Auth.UnknownRole)
	fs.StringVar(&policy, "unknown-role", policy, "Policy for roles outside the known set (user or deny)")
	if err := fs.Parse(args); err != nil {
		return menuOptions{}, err
	}
	if fs.NArg() != 1 {
		return menuOptions{}, errors.New("usage: portal-admin menu [--unknown-role user|deny] <role>")
	}
	p := menu.UnknownRolePolicy(strings.ToLower(strings.TrimSpace(policy)))
	if p == "" {
		p = menu.FallbackToUser
	}
	if !p.Valid() {
		return menuOptions{}, fmt.Errorf("invalid --unknown-role %q (valid options: user, deny)", policy)
	}
	return menuOptions{Role: fs.Arg(0), Policy: p}, nil
}

func runMenu(cmdCtx *commandContext, args []string) error {
	opts, err := parseMenuFlags(args, cmdCtx.Config)
	if err != nil {
		return err
	}
	reg := menu.Default(opts.Policy)
	role := domainauth.Role(strings.TrimSpace(opts.Role))

	if effective, ok := reg.EffectiveRole(role); !ok {
		if wErr := writef(cmdCtx.Out, "Role %q is unknown and the %q policy denies it.\n", role, opts.Policy); wErr != nil {
			return wErr
		}
	} else if effective != role {
		if wErr := writef(cmdCtx.Out, "Role %q is unknown; showing the menu for %q.\n", role, effective); wErr != nil {
			return wErr
		}
	}

	entries := reg.AccessibleEntries(role)
	if len(entries) == 0 {
		return writeln(cmdCtx.Out, "No entries.")
	}
	w := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Key\tLabel\tPath"); err != nil {
		return fmt.Errorf("write menu header: %w", err)
	}
	for _, e := range entries {
		if err := writef(w, "%s\t%s\t%s\n", e.Key, e.Label, e.Path); err != nil {
			return fmt.Errorf("write menu entry %q: %w", e.Key, err)
		}
	}
	return w.Flush()
}

func runRoutes(cmdCtx *commandContext, _ []string) error {
	reg := menu.Default(menu.FallbackToUser)
	w := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Route\tMenu entry\tRoles"); err != nil {
		return fmt.Errorf("write routes header: %w", err)
	}
	for _, r := range httpx.GuardedRoutes(reg) {
		roles := make([]string, len(r.Roles))
		for i, role := range r.Roles {
			roles[i] = string(role)
		}
		if err := writef(w, "%s\t%s\t%s\n", r.Pattern, r.MenuKey, strings.Join(roles, ", ")); err != nil {
			return fmt.Errorf("write route %q: %w", r.Pattern, err)
		}
	}
	return w.Flush()
}

func runPingAPI(cmdCtx *commandContext, _ []string) error {
	client, err := backend.NewClient(backend.Config{
		BaseURL:          cmdCtx.Config.Backend.BaseURL,
		Timeout:          cmdCtx.Config.Backend.Timeout,
		ErrorMessagePath: cmdCtx.Config.Backend.ErrorMessagePath,
		Logger:           cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultPingTimeout)
	defer cancel()

	start := time.Now()
	if pingErr := client.Ping(ctx); pingErr != nil {
		return fmt.Errorf("ping %s: %w", cmdCtx.Config.Backend.BaseURL, pingErr)
	}
	return writef(cmdCtx.Out, "%s is up (%s)\n", cmdCtx.Config.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, s string) error {
	if _, err := fmt.Fprintln(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
