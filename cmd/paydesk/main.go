package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/paydesk/internal/agent"
	"github.com/zombor/paydesk/internal/alert"
	"github.com/zombor/paydesk/internal/auth"
	"github.com/zombor/paydesk/internal/chart"
	"github.com/zombor/paydesk/internal/dashboard"
	"github.com/zombor/paydesk/internal/nav"
	"github.com/zombor/paydesk/internal/qrcode"
	"github.com/zombor/paydesk/internal/revenue"
	"github.com/zombor/paydesk/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// envFileArg finds --env-file before flags are parsed so its values can feed ff's env lookup
func envFileArg(args []string) string {
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--env-file="):
			return strings.TrimPrefix(arg, "--env-file=")
		case arg == "--env-file" && i+1 < len(args):
			return args[i+1]
		}
	}
	return os.Getenv("PAYDESK_ENV_FILE")
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if path := envFileArg(os.Args[1:]); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "error: loading env file %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fs := ff.NewFlagSet("paydesk")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "paydesk.db", "Database file path")
		archivePath    = fs.StringLong("archive", "", "Directory to keep generated QR code PNGs (optional)")
		origin         = fs.StringLong("origin", "http://localhost:8080", "Public origin encoded into agent QR codes")
		revenueURL     = fs.StringLong("revenue-url", "http://localhost:3000/revenue", "Revenue API base URL, the organization ID is appended")
		revenueTimeout = fs.DurationLong("revenue-timeout", revenue.DefaultTimeout, "Revenue API request timeout")
		orgClaim       = fs.StringLong("org-claim", auth.DefaultOrgClaim, "JWT claim holding the organization ID")
		cameraURL      = fs.StringLong("camera-url", "", "Snapshot URL of a camera to scan continuously (optional)")
		scanInterval   = fs.DurationLong("scan-interval", scanning.DefaultInterval, "Delay between camera frames")
		themeName      = fs.StringLong("theme", "light", "Default chart theme: 'light' or 'dark'")
		toastDuration  = fs.DurationLong("toast-duration", alert.DefaultDuration, "How long alerts stay visible")
		qrCacheSize    = fs.IntLong("qr-cache-size", qrcode.DefaultCacheSize, "Number of rendered QR codes kept in memory")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_              = fs.StringLong("env-file", "", "Load environment variables from this file first (optional)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PAYDESK"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := agent.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize QR code archive and generator
	var archive qrcode.Storage
	if *archivePath != "" {
		slog.Info("Initializing QR code archive...", "path", *archivePath)
		local, err := qrcode.NewLocalStorage(*archivePath)
		if err != nil {
			slog.Error("Failed to initialize QR code archive", "error", err)
			os.Exit(1)
		}
		archive = local
	}
	generator, err := qrcode.NewGenerator(*origin, *qrCacheSize, archive)
	if err != nil {
		slog.Error("Failed to initialize QR code generator", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize scanner, polling the camera when one is configured
	scanner := scanning.NewScanner(*scanInterval)
	if *cameraURL != "" {
		slog.Info("Starting camera scanner...", "url", *cameraURL, "interval", *scanInterval)
		go func() {
			if err := scanner.Run(ctx, scanning.NewSnapshotSource(*cameraURL)); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Scanner stopped", "error", err)
			}
		}()
	}

	// Initialize revenue widget
	resolver := auth.NewResolver(db, *orgClaim)
	widget := revenue.NewWidget(revenue.NewClient(*revenueURL, *revenueTimeout), resolver)

	notifier := alert.NewNotifier(*toastDuration)
	defer notifier.Close()

	// Initialize server
	basicAuth := dashboard.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := dashboard.NewServer(dashboard.Deps{
		Agents:   agent.NewService(db),
		Sessions: db,
		Resolver: resolver,
		QRCodes:  generator,
		Scanner:  scanner,
		Revenue:  widget,
		Notifier: notifier,
		Routes:   nav.DefaultRoutes,
		Theme:    chart.ParseTheme(*themeName, chart.Light),
	}, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down server", "error", err)
	}
}
