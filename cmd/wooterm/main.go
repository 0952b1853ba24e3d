package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/mmcdole/wooterm/internal/catalog"
	"github.com/mmcdole/wooterm/internal/config"
	"github.com/mmcdole/wooterm/internal/dashboard"
	"github.com/mmcdole/wooterm/internal/log"
	"github.com/mmcdole/wooterm/internal/orders"
	"github.com/mmcdole/wooterm/internal/search"
	"github.com/mmcdole/wooterm/internal/store"
	"github.com/mmcdole/wooterm/internal/telemetry"
	"github.com/mmcdole/wooterm/internal/tui"
	"github.com/mmcdole/wooterm/internal/tui/styles"
	"github.com/mmcdole/wooterm/internal/woo"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		configDir   string
		setup       bool
		clearCache  bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configDir, "config", "", "config directory (default "+config.DefaultConfigDir()+")")
	flag.BoolVar(&setup, "setup", false, "re-run the store setup prompts")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete the local cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("wooterm %s\n", Version)
		return
	}

	if err := run(configDir, setup, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string, setup, clearCache bool) error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := log.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting wooterm", "version", Version)

	if clearCache {
		if err := cfg.ClearCache(); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	if setup || !cfg.IsConfigured() {
		return runSetupFlow(cfg, configDir, logger)
	}

	cache, err := store.New(cfg.CacheDir(), cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	client := woo.NewClient(cfg.Server.URL, cfg.Server.ConsumerKey, cfg.Server.ConsumerSecret, logger,
		woo.WithMaxRetries(cfg.Sync.MaxRetries),
		woo.WithSiteID(cfg.Server.SiteID),
	)

	metrics, metricsSrv, err := startTelemetry(cfg.Telemetry.MetricsAddr, logger)
	if err != nil {
		return err
	}
	if metricsSrv != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(ctx)
		}()
	}

	siteID := client.SiteID()
	catalogCmds := catalog.NewCommands(client, client, cache, siteID, logger)
	catalogQueries := catalog.NewQueries(cache, siteID)
	orderCmds := orders.NewCommands(client, cache, siteID, logger)
	orderQueries := orders.NewQueries(cache, siteID)

	dashboardSvc := dashboard.NewService(client, client, cache, siteID,
		dashboard.WithPeriod(cfg.UI.ReportPeriod),
		dashboard.WithLogger(logger),
		dashboard.WithMetrics(metrics),
	)
	searchSvc := search.NewService(catalogCmds, search.CacheFuncs{
		ProductsFunc: catalogQueries.Products,
		OrdersFunc:   orderQueries.Orders,
	}, logger)

	model := tui.NewModel(tui.Deps{
		Catalog:      catalogCmds,
		CatalogQuery: catalogQueries,
		Orders:       orderCmds,
		OrderQuery:   orderQueries,
		Dashboard:    dashboardSvc,
		Search:       searchSvc,
		StoreName:    storeName(cfg.Server.URL),
		PageSize:     cfg.Sync.PageSize,
		Timeout:      cfg.Sync.Timeout,
		DefaultTab:   tui.ParseTab(cfg.UI.DefaultTab),
		Logger:       logger,
		Metrics:      metrics,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// startTelemetry registers the sync metrics and, when addr is set, serves them
func startTelemetry(addr string, logger *slog.Logger) (*telemetry.SyncMetrics, *telemetry.Server, error) {
	if addr == "" {
		return nil, nil, nil
	}
	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewSyncMetrics(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	srv, err := telemetry.Start(addr, reg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start metrics server: %w", err)
	}
	return metrics, srv, nil
}

func storeName(rawURL string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	return strings.TrimSuffix(name, "/")
}

// runSetupFlow asks for the store URL and API credentials, verifies them
// and saves the config
func runSetupFlow(cfg *config.Config, configDir string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to wooterm!")
	fmt.Println()
	fmt.Println("Create a REST API key under WooCommerce > Settings > Advanced > REST API")
	fmt.Println("with Read access, then enter it below.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		storeURL, err := prompt(reader, "Store URL (e.g., https://shop.example.com): ")
		if err != nil {
			return err
		}
		key, err := prompt(reader, "Consumer key: ")
		if err != nil {
			return err
		}
		secret, err := promptSecret(reader, "Consumer secret: ")
		if err != nil {
			return err
		}
		if storeURL == "" || key == "" || secret == "" {
			fmt.Println("All three values are required. Please try again.")
			fmt.Println()
			continue
		}

		cfg.Server.URL = strings.TrimSuffix(storeURL, "/")
		cfg.Server.ConsumerKey = key
		cfg.Server.ConsumerSecret = secret
		if err := cfg.Validate(); err != nil {
			fmt.Printf("✗ %v\n\n", err)
			continue
		}

		fmt.Println()
		client := woo.NewClient(cfg.Server.URL, key, secret, logger, woo.WithMaxRetries(0))
		if err := verifyWithSpinner(client); err != nil {
			fmt.Printf("✗ Could not connect: %v\n", err)
			fmt.Println("Please check the URL and credentials and try again.")
			fmt.Println()
			continue
		}
		break
	}

	if err := config.SaveConfig(cfg, configDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run wooterm again to start the application.")
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptSecret reads without echo when stdin is a terminal
func promptSecret(reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(reader, label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// verifyWithSpinner checks the credentials with a visual spinner
func verifyWithSpinner(client *woo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Verify(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Connecting to store...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ Connected")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Connecting to store...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return errors.New("connection timed out")
		}
	}
}
