package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"feedwatch/internal/config"
	"feedwatch/internal/daemon"
	"feedwatch/internal/database"
	"feedwatch/internal/feed"
	"feedwatch/internal/models"
	"feedwatch/internal/poller"
	"feedwatch/internal/reporter"
	"feedwatch/internal/web"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon()
	case "serve":
		serveDaemon()
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "report":
		generateReport()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("feedwatch version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`feedwatch - Feeding-station beacon dashboard

Usage:
  feedwatch <command> [options]

Commands:
  start              Start the polling daemon
  serve              Start daemon with web dashboard
  stop               Stop the daemon
  status             Fetch the beacon log once and print the feeding status
  report [days]      Summarize feeding history (default 7 days)
  clear              Clear all poll history from database
  version            Show version information
  help               Show this help message

Examples:
  feedwatch serve
  feedwatch status
  feedwatch report 14
  feedwatch report 7 --json
  feedwatch stop

Environment Variables:
  FEEDWATCH_SOURCE_URL       URL of the beacon CSV log (required)
  FEEDWATCH_POLL_INTERVAL    Poll interval in seconds (10-3600)
  FEEDWATCH_RESET_HOUR       Feeding day rollover hour (0-23)
  FEEDWATCH_WINDOWS          Meal windows, e.g. breakfast=7-10,dinner=16-20
  FEEDWATCH_TIMEZONE         Time zone for classification
  FEEDWATCH_DB_PATH          History database file path
  FEEDWATCH_PID_FILE         PID file path
  FEEDWATCH_WEB_HOST         Dashboard bind host
  FEEDWATCH_WEB_PORT         Dashboard bind port

Version: %s
`, version)
}

func startDaemon() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if os.Getenv("FEEDWATCH_DAEMON_CHILD") != "1" {
		// Parent process - fork and exit
		daemonize(false)
		return
	}

	runDaemon(cfg, dm, false)
}

func serveDaemon() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if os.Getenv("FEEDWATCH_DAEMON_CHILD") != "1" {
		daemonize(true)
		return
	}

	runDaemon(cfg, dm, true)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	// Redirect logs to file
	logFile, err := os.OpenFile("/tmp/feedwatch.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	// Initialize history database
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Write PID file
	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	repo := database.NewRepository(db)
	fetcher := feed.NewFetcher(cfg.Source.URL, cfg.Source.FetchTimeout)
	pollSvc := poller.NewService(cfg, fetcher, repo)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, repo, pollSvc)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
		log.Printf("Dashboard available at: http://%s", webServer.GetAddress())
	}

	go func() {
		if err := pollSvc.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Poller error: %v", err)
			cancel()
		}
	}()

	log.Println("Starting feedwatch daemon...")
	log.Printf("Configuration:\n%s", cfg.String())

	// Wait for shutdown signal
	<-sigChan
	log.Println("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel()
	pollSvc.Stop()

	if webServer != nil {
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
	}

	log.Println("Daemon stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if running {
		fmt.Printf("Daemon: Running (PID: %d)\n", pid)
	} else {
		fmt.Println("Daemon: Not running")
	}

	// A one-shot cycle works whether or not the daemon is up; history is not
	// touched here.
	fetcher := feed.NewFetcher(cfg.Source.URL, cfg.Source.FetchTimeout)
	pollSvc := poller.NewService(cfg, fetcher, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.FetchTimeout+5*time.Second)
	defer cancel()

	view, err := pollSvc.PollOnce(ctx)
	if err != nil {
		fmt.Printf("\nCould not fetch beacon log: %v\n", err)
		os.Exit(1)
	}

	printStatus(view)
}

func printStatus(view *models.StatusView) {
	fmt.Printf("\nFeeding day since %s\n", view.FeedingDayStart.Format("2006-01-02 15:04"))

	for _, meal := range view.Meals {
		if meal.Fed {
			fmt.Printf("  %-12s fed at %s (%s)\n", meal.Name, meal.FedAt.Format("15:04"), meal.FedAgo)
		} else {
			fmt.Printf("  %-12s not yet (window %02d:00-%02d:00)\n", meal.Name, meal.StartHour, meal.EndHour)
		}
	}

	fmt.Printf("\nFed %d/%d\n", view.SatisfiedCount, view.TotalWindows)

	if view.LastEventAt != nil {
		fmt.Printf("Last activity: %s (%s)\n", view.LastEventAt.Format("2006-01-02 15:04"), view.LastEventAgo)
	} else {
		fmt.Println("Last activity: none recorded")
	}

	if view.SkippedLines > 0 {
		fmt.Printf("Skipped %d malformed line(s)\n", view.SkippedLines)
	}
}

// parseReportArgs understands "report [days] [--json]" with the flag and
// the day count in either order.
func parseReportArgs(args []string) (days int, jsonOutput bool) {
	days = 7
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
			continue
		}
		if d, err := strconv.Atoi(arg); err == nil && d > 0 {
			days = d
		}
	}
	return days, jsonOutput
}

func generateReport() {
	days, jsonOutput := parseReportArgs(os.Args[2:])

	cfg := config.New()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	rep := reporter.New(cfg, repo)

	report, err := rep.GenerateReport(days)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	if jsonOutput {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(rep.FormatReportText(report))
	}
}

func clearDatabase() {
	cfg := config.New()

	// Prompt for confirmation
	fmt.Print("This will delete all poll history. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	if err := repo.Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Database cleared successfully")
}

func daemonize(withWeb bool) {
	env := os.Environ()
	env = append(env, "FEEDWATCH_DAEMON_CHILD=1")

	args := os.Args

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	process, err := os.StartProcess(args[0], args, procAttr)
	if err != nil {
		log.Fatalf("Failed to start daemon process: %v", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Println("Dashboard will be available on the configured web port")
	}
	fmt.Println("Logs: /tmp/feedwatch.log")
}
