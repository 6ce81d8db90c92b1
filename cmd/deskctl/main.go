package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"resortdesk/internal/client"
	"resortdesk/internal/config"
	"resortdesk/internal/models"
	"resortdesk/internal/report"
	"resortdesk/internal/repository"
	"resortdesk/internal/validation"
	"resortdesk/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const usage = `usage: deskctl [global flags] <command> [flags]

commands:
  list    [-q text]                      show reservations
  export  [-q text] [-o file] [-remote]  write the filtered list as xlsx
  edit    -id ID [-name ...] [-date ...] check the new slot and save it
  delete  -id ID                         delete a reservation
  stats   [-date YYYY-MM-DD] [-redis addr]

booking rules: -config server.yaml, -min-guests N, -max-guests N
`

type globals struct {
	baseURL  string
	apiKey   string
	apiExtra string
	token    string
	email    string
	password string
	timeout  time.Duration
	verbose  bool

	// booking rules for the local form check
	configPath string
	minGuests  int
	maxGuests  int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load(".env")

	var g globals
	fs := flag.NewFlagSet("deskctl", flag.ExitOnError)
	fs.StringVar(&g.baseURL, "url", envOr("DESK_URL", "http://localhost:8000"), "API base URL")
	fs.StringVar(&g.apiKey, "api-key", os.Getenv("DESK_API_KEY"), "API key")
	fs.StringVar(&g.apiExtra, "api-extra", os.Getenv("DESK_API_EXTRA"), "API key extra")
	fs.StringVar(&g.token, "token", os.Getenv("DESK_TOKEN"), "bearer token")
	fs.StringVar(&g.email, "email", os.Getenv("DESK_EMAIL"), "login email, used when no key or token is set")
	fs.StringVar(&g.password, "password", os.Getenv("DESK_PASSWORD"), "login password")
	fs.DurationVar(&g.timeout, "timeout", 10*time.Second, "request timeout")
	fs.BoolVar(&g.verbose, "v", false, "debug logging")
	fs.StringVar(&g.configPath, "config", os.Getenv("CONFIG_PATH"), "server config to take the booking rules from")
	fs.IntVar(&g.minGuests, "min-guests", 0, "override the minimum number of guests")
	fs.IntVar(&g.maxGuests, "max-guests", 0, "override the maximum number of guests")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no command")
	}

	level := zerolog.WarnLevel
	if g.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Str("component", "deskctl").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := deskRules(g)
	if err != nil {
		return err
	}
	c, err := connect(ctx, g)
	if err != nil {
		return err
	}
	desk := workflow.NewDesk(c, consoleNotifier{}, rules, &logger)

	cmd, args := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "list":
		return cmdList(ctx, desk, args)
	case "export":
		return cmdExport(ctx, desk, c, args)
	case "edit":
		return cmdEdit(ctx, desk, args)
	case "delete":
		return cmdDelete(ctx, desk, args)
	case "stats":
		return cmdStats(ctx, c, args)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// deskRules uses the same reservations section as the server, so the local
// check and the server agree on the guest bounds.
func deskRules(g globals) (validation.Rules, error) {
	var rc config.ReservationsConfig
	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return validation.Rules{}, fmt.Errorf("load config: %w", err)
		}
		rc = cfg.Reservations
	}
	if g.minGuests > 0 {
		rc.MinGuests = g.minGuests
	}
	if g.maxGuests > 0 {
		rc.MaxGuests = g.maxGuests
	}
	if rc.MinGuests > 0 && rc.MaxGuests > 0 && rc.MaxGuests < rc.MinGuests {
		return validation.Rules{}, fmt.Errorf("max guests %d is below min guests %d", rc.MaxGuests, rc.MinGuests)
	}
	return validation.NewRules(rc), nil
}

func connect(ctx context.Context, g globals) (*client.Client, error) {
	c := client.New(g.baseURL, g.timeout)
	switch {
	case g.apiKey != "":
		c.UseAPIKey(g.apiKey, g.apiExtra)
	case g.token != "":
		c.UseToken(g.token)
	case g.email != "":
		if _, err := c.Login(ctx, g.email, g.password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	return c, nil
}

func cmdList(ctx context.Context, desk *workflow.Desk, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("q", "", "search by id, name, phone or email")
	_ = fs.Parse(args)

	if err := desk.Load(ctx); err != nil {
		return err
	}
	printReservations(desk.Search(*query))
	return nil
}

func cmdExport(ctx context.Context, desk *workflow.Desk, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	query := fs.String("q", "", "search by id, name, phone or email")
	out := fs.String("o", models.ReportFileName+report.XLSXRenderer{}.Extension(), "output file")
	title := fs.String("title", models.DefaultReportTitle, "sheet title")
	remote := fs.Bool("remote", false, "let the server render the report")
	_ = fs.Parse(args)

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	if *remote {
		if err := c.DownloadReport(ctx, *query, f); err != nil {
			return err
		}
		fmt.Printf("report saved to %s\n", *out)
		return nil
	}

	if err := desk.Load(ctx); err != nil {
		return err
	}
	desk.Search(*query)
	table, err := desk.Export(f, report.XLSXRenderer{}, *title)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Printf("%d rows saved to %s\n", len(table.Rows), *out)
	return nil
}

func cmdEdit(ctx context.Context, desk *workflow.Desk, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "reservation id")
	name := fs.String("name", "", "guest name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone, 10 digits")
	guests := fs.String("guests", "", "number of guests")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	start := fs.String("start", "", "start time, HH:MM")
	end := fs.String("end", "", "end time, HH:MM; derived from start when empty")
	checkOnly := fs.Bool("check", false, "only check availability")
	_ = fs.Parse(args)

	if *id == "" {
		return errors.New("edit: -id is required")
	}
	if err := desk.Load(ctx); err != nil {
		return err
	}
	if err := desk.Select(*id); err != nil {
		return fmt.Errorf("select %s: %w", *id, err)
	}

	form := desk.State().(workflow.Editing).Form
	setIf(&form.Name, *name)
	setIf(&form.Email, *email)
	setIf(&form.Phone, *phone)
	setIf(&form.Date, *date)
	if *start != "" {
		form.StartTime = *start
		form.EndTime = *end
	} else {
		setIf(&form.EndTime, *end)
	}
	if *guests != "" {
		n, err := strconv.Atoi(*guests)
		if err != nil {
			return fmt.Errorf("guests: %w", err)
		}
		g := models.FlexInt(n)
		form.Guests = &g
	}
	if err := desk.Change(form); err != nil {
		return err
	}

	if err := desk.Check(ctx); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			printFieldErrors(errs)
			return errors.New("form has errors")
		}
		if ed, ok := desk.State().(workflow.Editing); ok && len(ed.Errors) > 0 {
			printFieldErrors(ed.Errors)
			return errors.New("form has errors")
		}
		return err
	}

	switch st := desk.State().(type) {
	case workflow.Unavailable:
		return fmt.Errorf("slot is taken (%d conflicting)", st.Conflicts)
	case workflow.Available:
		if *checkOnly {
			fmt.Println("slot is available")
			return nil
		}
	default:
		return fmt.Errorf("unexpected state %s", st.Name())
	}
	return desk.Confirm(ctx)
}

func cmdDelete(ctx context.Context, desk *workflow.Desk, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "reservation id")
	_ = fs.Parse(args)

	if *id == "" {
		return errors.New("delete: -id is required")
	}
	return desk.Delete(ctx, *id)
}

func cmdStats(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	date := fs.String("date", "", "attendance date, today when empty")
	redisAddr := fs.String("redis", os.Getenv("DESK_REDIS"), "redis address for caching counts")
	ttl := fs.Duration("cache-ttl", time.Minute, "cache ttl")
	_ = fs.Parse(args)

	if *redisAddr != "" {
		rc := repository.NewRedisClient(config.RedisConfig{Address: *redisAddr})
		defer func() { _ = repository.Close(rc) }()
		c.UseRedisCache(rc, *ttl)
	}

	employees, err := c.EmployeeCount(ctx)
	if err != nil {
		return fmt.Errorf("employee count: %w", err)
	}
	attendance, err := c.AttendanceCount(ctx, *date)
	if err != nil {
		return fmt.Errorf("attendance count: %w", err)
	}
	reservations, err := c.ReservationCount(ctx)
	if err != nil {
		return fmt.Errorf("reservation count: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "employees\t%d\n", employees)
	fmt.Fprintf(w, "present today\t%d\n", attendance)
	fmt.Fprintf(w, "reservations\t%d\n", reservations)
	return w.Flush()
}

func printReservations(list []*models.Reservation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL\tGUESTS\tDATE\tTIME")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s-%s\n",
			r.ReservationID, r.Name, r.Phone, r.Email, r.Guests, r.Date, r.StartTime, r.EndTime)
	}
	_ = w.Flush()
	fmt.Printf("%d reservation(s)\n", len(list))
}

func printFieldErrors(errs validation.Errors) {
	for field, msg := range errs {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type consoleNotifier struct{}

func (consoleNotifier) Success(msg string) { fmt.Println(msg) }
func (consoleNotifier) Warn(msg string)    { fmt.Fprintln(os.Stderr, msg) }
func (consoleNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, msg) }
