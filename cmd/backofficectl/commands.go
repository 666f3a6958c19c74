package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/router"
	"backoffice/internal/service"
	"backoffice/internal/worker"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var commands = []subcommands.Command{
	&seedUserCmd{},
	&hashPasswordCmd{},
	&importHistoryCmd{},
	&reportCmd{},
	&deadLettersCmd{},
}

// openServices connects to Postgres and, when reachable, Redis so that
// writes made here also invalidate the server's caches.
func openServices() (*router.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caches will expire on their own")
		rdb = nil
	}
	return router.NewServices(cfg, db, rdb, nil)
}

// ── seed-user ────────────────────────────────────────────────────────────────

type seedUserCmd struct {
	username string
	password string
	fullName string
	role     string
}

func (*seedUserCmd) Name() string     { return "seed-user" }
func (*seedUserCmd) Synopsis() string { return "create a user, or reset its password if it exists" }
func (*seedUserCmd) Usage() string {
	return `seed-user -username <name> -password <password> [-role owner|clerk] [-name <full name>]

  Creates the user. When the username is already taken, the password and
  role are reset and the account is re-activated.
`
}

func (c *seedUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "login name (required)")
	f.StringVar(&c.password, "password", "", "password, at least 8 characters (required)")
	f.StringVar(&c.fullName, "name", "", "full name")
	f.StringVar(&c.role, "role", model.RoleOwner, "owner or clerk")
}

func (c *seedUserCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || len(c.password) < 8 {
		fmt.Fprintln(os.Stderr, "Error: -username and a -password of at least 8 characters are required.")
		return subcommands.ExitUsageError
	}
	if c.role != model.RoleOwner && c.role != model.RoleClerk {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q.\n", c.role)
		return subcommands.ExitUsageError
	}
	svc, err := openServices()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	_, err = svc.Auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: c.username,
		FullName: c.fullName,
		Password: c.password,
		Role:     c.role,
	})
	var verr *service.ValidationError
	switch {
	case err == nil:
		fmt.Printf("user %q created\n", c.username)
		return subcommands.ExitSuccess
	case !errors.As(err, &verr):
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	users, err := svc.Auth.ListUsers(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	for _, u := range users {
		if u.Username != c.username {
			continue
		}
		id, err := uuid.Parse(u.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if _, err := svc.Auth.UpdateUser(ctx, id, dto.UpdateUserRequest{Password: c.password, Role: c.role, FullName: c.fullName}); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if err := svc.Auth.SetActive(ctx, id, true); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("user %q updated\n", c.username)
		return subcommands.ExitSuccess
	}
	fmt.Fprintln(os.Stderr, "Error:", verr)
	return subcommands.ExitFailure
}

// ── hash-password ────────────────────────────────────────────────────────────

type hashPasswordCmd struct{ password string }

func (*hashPasswordCmd) Name() string     { return "hash-password" }
func (*hashPasswordCmd) Synopsis() string { return "print a bcrypt hash for a password" }
func (*hashPasswordCmd) Usage() string {
	return "hash-password -password <password>\n"
}

func (c *hashPasswordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "password", "", "password to hash (required)")
}

func (c *hashPasswordCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.password == "" {
		fmt.Fprintln(os.Stderr, "Error: -password is required.")
		return subcommands.ExitUsageError
	}
	h, err := bcrypt.GenerateFromPassword([]byte(c.password), 12)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(h))
	return subcommands.ExitSuccess
}

// ── import-history ───────────────────────────────────────────────────────────

type importHistoryCmd struct{ file string }

func (*importHistoryCmd) Name() string     { return "import-history" }
func (*importHistoryCmd) Synopsis() string { return "import historical sales from an .xlsx workbook" }
func (*importHistoryCmd) Usage() string {
	return `import-history -file <workbook.xlsx>

  Reads the first sheet. Required columns: date, product, quantity, unit cost
  and selling price; sku and reference are optional. A single bad row aborts
  the import and nothing is stored.
`
}

func (c *importHistoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "path to the .xlsx file (required)")
}

func (c *importHistoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required.")
		return subcommands.ExitUsageError
	}
	f, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	svc, err := openServices()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	resp, err := svc.Historical.Import(ctx, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("imported %d rows: revenue %s, profit %s\n",
		resp.Imported, resp.Revenue.StringFixed(2), resp.Profit.StringFixed(2))
	return subcommands.ExitSuccess
}

// ── report ───────────────────────────────────────────────────────────────────

type reportCmd struct{ asJSON bool }

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the daily summary or the full dashboard" }
func (*reportCmd) Usage() string {
	return "report [-json]\n"
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the dashboard as JSON instead of the summary text")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := openServices()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if c.asJSON {
		d, err := svc.Reports.Dashboard(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	subject, body, err := svc.Reports.DailySummary(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Println(subject)
	fmt.Println()
	fmt.Print(body)
	return subcommands.ExitSuccess
}

// ── dead-letters ─────────────────────────────────────────────────────────────

type deadLettersCmd struct {
	limit   int64
	requeue bool
}

func (*deadLettersCmd) Name() string     { return "dead-letters" }
func (*deadLettersCmd) Synopsis() string { return "list or requeue notifications that failed delivery" }
func (*deadLettersCmd) Usage() string {
	return "dead-letters [-n 20] [-requeue]\n"
}

func (c *deadLettersCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.limit, "n", 20, "entries to list, 0 for all")
	f.BoolVar(&c.requeue, "requeue", false, "move every parked job back onto the notification queue")
}

func (c *deadLettersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: load config:", err)
		return subcommands.ExitFailure
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: connect redis:", err)
		return subcommands.ExitFailure
	}
	defer rdb.Close()

	if c.requeue {
		moved, err := worker.Requeue(ctx, rdb, worker.QueueNotifications)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error after %d requeued: %v\n", moved, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("requeued %d notifications\n", moved)
		return subcommands.ExitSuccess
	}

	parked, err := worker.DeadLetters(ctx, rdb, worker.QueueNotifications, c.limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if len(parked) == 0 {
		fmt.Println("no parked notifications")
		return subcommands.ExitSuccess
	}
	for _, dl := range parked {
		fmt.Printf("%s  %-28s  %-40s  %d attempts: %s\n",
			dl.FailedAt.Format(time.RFC3339), dl.Recipient, dl.Subject, dl.Attempts, dl.Reason)
	}
	return subcommands.ExitSuccess
}
