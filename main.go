package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap"

	"github.com/jlbmaritime/hotspotctl/internal/debug"
	applog "github.com/jlbmaritime/hotspotctl/internal/log"
	"github.com/jlbmaritime/hotspotctl/internal/poller"
	"github.com/jlbmaritime/hotspotctl/internal/tui"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
	"github.com/jlbmaritime/hotspotctl/wifi/discovery"
	"github.com/jlbmaritime/hotspotctl/wifi/httpapi"
	"github.com/jlbmaritime/hotspotctl/wifi/mock"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

// config holds the root flags shared by every subcommand.
type config struct {
	url      string
	username string
	password string
	timeout  time.Duration

	poll        time.Duration
	skipOverlap bool
	theme       string

	debug     string
	debugFile string

	discover bool
	mock     bool
}

func (c *config) register(fs *flag.FlagSet) {
	fs.StringVar(&c.url, "url", httpapi.DefaultBaseURL, "base URL of the wifi manager (env: HOTSPOTCTL_URL)")
	fs.StringVar(&c.username, "username", "", "HTTP basic auth username (env: HOTSPOTCTL_USERNAME)")
	fs.StringVar(&c.password, "password", "", "HTTP basic auth password (env: HOTSPOTCTL_PASSWORD)")
	fs.DurationVar(&c.timeout, "timeout", httpapi.DefaultTimeout, "request timeout")
	fs.DurationVar(&c.poll, "poll", poller.DefaultInterval, "refresh interval of the interactive view")
	fs.BoolVar(&c.skipOverlap, "poll-skip-overlap", false, "skip a refresh while the previous one is running")
	fs.StringVar(&c.theme, "theme", "", "path to theme toml file (env: HOTSPOTCTL_THEME)")
	fs.StringVar(&c.debug, "debug", "", "trace requests at this level: debug, info, warn, error (env: HOTSPOTCTL_DEBUG)")
	fs.StringVar(&c.debugFile, "debug-file", debug.DefaultPath, "file the request trace is written to")
	fs.BoolVar(&c.discover, "discover", false, "find the device with mDNS instead of using --url")
	fs.BoolVar(&c.mock, "mock", false, "use an in-memory backend with sample networks")
}

// backend builds the wifi.Backend the flags describe.
func (c *config) backend(ctx context.Context, trace *zap.Logger) (wifi.Backend, error) {
	if c.mock {
		return mock.New(), nil
	}
	url := c.url
	if c.discover {
		dev, err := discovery.NewScanner().First(ctx)
		if err != nil {
			return nil, err
		}
		slog.Info("discovered device", "device", dev.String())
		url = dev.URL()
	}
	return httpapi.New(httpapi.Options{
		BaseURL:  url,
		Username: c.username,
		Password: c.password,
		Timeout:  c.timeout,
		Logger:   trace,
	}), nil
}

func confirmer(yes bool) workflow.Confirmer {
	if yes {
		return workflow.AlwaysConfirm
	}
	return newLineConfirmer(os.Stdin, os.Stdout)
}

// main is the entry point of the application
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cfg := &config{}
	rootFlagSet := flag.NewFlagSet("hotspotctl", flag.ContinueOnError)
	cfg.register(rootFlagSet)
	version := rootFlagSet.Bool("version", false, "display version")

	var trace *zap.Logger
	getBackend := func(ctx context.Context) (wifi.Backend, error) {
		return cfg.backend(ctx, trace)
	}

	statusCmd := &ffcli.Command{
		Name:       "status",
		ShortUsage: "hotspotctl status",
		ShortHelp:  "Show the current connection",
		Exec: func(ctx context.Context, args []string) error {
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runStatus(ctx, os.Stdout, b)
		},
	}

	listFlagSet := flag.NewFlagSet("list", flag.ContinueOnError)
	listJSON := listFlagSet.Bool("json", false, "output in JSON format")
	listCmd := &ffcli.Command{
		Name:       "list",
		ShortUsage: "hotspotctl list [--json]",
		ShortHelp:  "List saved and available networks",
		FlagSet:    listFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runList(ctx, os.Stdout, *listJSON, b)
		},
	}

	scanFlagSet := flag.NewFlagSet("scan", flag.ContinueOnError)
	scanRescan := scanFlagSet.Bool("rescan", false, "trigger a fresh scan instead of reading the cached results")
	scanJSON := scanFlagSet.Bool("json", false, "output in JSON format")
	scanCmd := &ffcli.Command{
		Name:       "scan",
		ShortUsage: "hotspotctl scan [--rescan] [--json]",
		ShortHelp:  "List networks in range that are not saved",
		FlagSet:    scanFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runScan(ctx, os.Stdout, *scanRescan, *scanJSON, b)
		},
	}

	connectFlagSet := flag.NewFlagSet("connect", flag.ContinueOnError)
	connectPassphrase := connectFlagSet.String("passphrase", "", "passphrase for the network")
	connectAsk := connectFlagSet.Bool("ask", false, "prompt for the passphrase")
	connectYes := connectFlagSet.Bool("yes", false, "do not ask for confirmation")
	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "hotspotctl connect [--passphrase <pass> | --ask] [--yes] <ssid>",
		ShortHelp:  "Connect to a wifi network",
		FlagSet:    connectFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			passphrase := *connectPassphrase
			if *connectAsk {
				var err error
				passphrase, err = readPassphrase(os.Stdin, os.Stderr, fmt.Sprintf("Passphrase for %s: ", args[0]))
				if err != nil {
					return err
				}
			}
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runConnect(ctx, os.Stdout, b, confirmer(*connectYes), args[0], passphrase)
		},
	}

	forgetFlagSet := flag.NewFlagSet("forget", flag.ContinueOnError)
	forgetYes := forgetFlagSet.Bool("yes", false, "do not ask for confirmation")
	forgetCmd := &ffcli.Command{
		Name:       "forget",
		ShortUsage: "hotspotctl forget [--yes] <ssid>",
		ShortHelp:  "Forget a saved network",
		FlagSet:    forgetFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("forget requires an ssid")
			}
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runForget(ctx, os.Stdout, b, confirmer(*forgetYes), args[0])
		},
	}

	pingFlagSet := flag.NewFlagSet("ping", flag.ContinueOnError)
	pingCount := pingFlagSet.Int("count", wifi.DefaultPingCount, "number of echo requests")
	pingCmd := &ffcli.Command{
		Name:       "ping",
		ShortUsage: "hotspotctl ping [--count n] [host]",
		ShortHelp:  "Run a ping test from the device",
		FlagSet:    pingFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			var host string
			if len(args) > 0 {
				host = args[0]
			}
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runPing(ctx, os.Stdout, b, host, *pingCount)
		},
	}

	diagFlagSet := flag.NewFlagSet("diag", flag.ContinueOnError)
	diagJSON := diagFlagSet.Bool("json", false, "output in JSON format")
	diagCmd := &ffcli.Command{
		Name:       "diag",
		ShortUsage: "hotspotctl diag [--json]",
		ShortHelp:  "Show interface, gateway and DNS diagnostics",
		FlagSet:    diagFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			return runDiag(ctx, os.Stdout, *diagJSON, b)
		},
	}

	discoverFlagSet := flag.NewFlagSet("discover", flag.ContinueOnError)
	discoverAll := discoverFlagSet.Bool("all", false, "list every HTTP service, not only the wifi manager")
	discoverCmd := &ffcli.Command{
		Name:       "discover",
		ShortUsage: "hotspotctl discover [--all]",
		ShortHelp:  "Find wifi manager devices with mDNS",
		FlagSet:    discoverFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			s := discovery.NewScanner()
			if *discoverAll {
				s.Host = ""
			}
			return runDiscover(ctx, os.Stdout, s)
		},
	}

	serveFlagSet := flag.NewFlagSet("serve-mock", flag.ContinueOnError)
	serveListen := serveFlagSet.String("listen", "127.0.0.1:8080", "address to listen on")
	serveCmd := &ffcli.Command{
		Name:       "serve-mock",
		ShortUsage: "hotspotctl serve-mock [--listen addr]",
		ShortHelp:  "Serve the REST API from an in-memory backend",
		FlagSet:    serveFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			ln, err := net.Listen("tcp", *serveListen)
			if err != nil {
				return err
			}
			return runServeMock(ctx, os.Stdout, ln, mock.New())
		},
	}

	root := &ffcli.Command{
		Name:       "hotspotctl",
		ShortUsage: "hotspotctl [flags] <subcommand> [args...]",
		FlagSet:    rootFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("HOTSPOTCTL")},
		Subcommands: []*ffcli.Command{
			statusCmd, listCmd, scanCmd, connectCmd, forgetCmd, pingCmd, diagCmd, discoverCmd, serveCmd,
		},
		Exec: func(ctx context.Context, args []string) error {
			b, err := getBackend(ctx)
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if cfg.debug != "" {
				level = slog.LevelDebug
			}
			// The screen belongs to the TUI; records are only kept for the log view.
			applog.Init(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
			return tui.Run(ctx, tui.Config{
				Backend:         b,
				PollInterval:    cfg.poll,
				SkipOverlapping: cfg.skipOverlap,
				Logger:          slog.Default(),
			})
		},
	}

	if err := root.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		return 2
	}

	if *version {
		fmt.Println(Version)
		return 0
	}

	if err := tui.LoadThemeFile(cfg.theme); err != nil {
		fmt.Fprintf(os.Stderr, "error loading theme: %v\n", err)
		return 1
	}

	applog.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var closeTrace func()
	var err error
	trace, closeTrace, err = debug.New(cfg.debug, cfg.debugFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeTrace()

	if err := root.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
