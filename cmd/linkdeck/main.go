// ABOUTME: Entry point for the linkdeck link-directory server
// ABOUTME: Provides serve, init, and health commands with colorized console output

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/links"
	"github.com/linkdeck/linkdeck/internal/web"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _ _       _       _           _
| (_)_ __ | | ____| | ___  ___| | __
| | | '_ \| |/ / _' |/ _ \/ __| |/ /
| | | | | |   < (_| |  __/ (__|   <
|_|_|_| |_|_|\_\__,_|\___|\___|_|\_\
`

// getConfigPath returns the path to the linkdeck config file.
// Priority: LINKDECK_CONFIG env var > XDG_CONFIG_HOME/linkdeck/linkdeck.yaml > ~/.config/linkdeck/linkdeck.yaml
func getConfigPath() string {
	if envPath := os.Getenv("LINKDECK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "linkdeck.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "linkdeck", "linkdeck.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: linkdeck <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the link-directory server")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	// Secrets commonly live in a .env next to the binary during development
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file if one exists, falling back to pure
// environment configuration otherwise.
func loadConfig(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		return config.Load(configPath)
	}
	return config.FromEnv()
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Store:  %s\n", cfg.Store.Backend)
	green.Print("    ▶ ")
	fmt.Printf("Tiers:  view=%s edit=%s\n", tierState(cfg.Access.ViewSecret), tierState(cfg.Access.EditSecret))
	fmt.Println()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening link store: %w", err)
	}
	defer store.Close()

	gw := access.New(
		access.Credentials{
			ViewSecret: cfg.Access.ViewSecret,
			EditSecret: cfg.Access.EditSecret,
		},
		time.Duration(cfg.Access.ViewSessionHours)*time.Hour,
		time.Duration(cfg.Access.EditSessionHours)*time.Hour,
	)

	server, err := web.New(gw, store, cfg)
	if err != nil {
		return fmt.Errorf("creating web server: %w", err)
	}

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: web.WithLogging(mux),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting linkdeck", "addr", cfg.Server.HTTPAddr, "store", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// tierState describes a tier secret for startup output
func tierState(secret string) string {
	if secret == "" {
		return "open"
	}
	return "gated"
}

// openStore builds the configured link store backend
func openStore(ctx context.Context, cfg *config.Config) (links.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return links.NewSQLiteStore(cfg.Store.SQLite.Path)
	case "redis":
		return links.NewRedisStore(ctx, cfg.Store.Redis.URL)
	case "memory":
		return links.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

const starterConfig = `server:
  http_addr: "0.0.0.0:8080"

store:
  backend: sqlite
  sqlite:
    path: "linkdeck.db"
  # backend: redis
  # redis:
  #   url: "redis://localhost:6379/0"

access:
  # Leave a secret empty to disable that tier's protection entirely.
  # Secrets can also come from LINKDECK_EDIT_SECRET / LINKDECK_VIEW_SECRET.
  edit_secret: "${LINKDECK_EDIT_SECRET}"
  view_secret: ""
  edit_session_hours: 168
  view_session_hours: 1

links:
  max_count: 50

site:
  title: "Links"
  intro: ""

logging:
  level: info
  format: text
`

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Edit the access secrets, then run: linkdeck serve")
	return nil
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			out:   os.Stdout,
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler writes human-oriented colorized log lines with thread-safe
// writes. The "component" attribute attached via WithAttrs is rendered as a
// bracketed prefix before the message; group names qualify attribute keys.
type colorHandler struct {
	mu     sync.Mutex
	out    io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	prefix := strings.Join(h.groups, ".")

	// Hoist the component attr into a prefix; remaining handler-level
	// attrs render before record attrs.
	rest := make([]slog.Attr, 0, len(h.attrs))
	for _, a := range h.attrs {
		if a.Key == "component" && prefix == "" {
			buf.WriteString(color.HiBlackString("[" + a.Value.String() + "] "))
			continue
		}
		rest = append(rest, a)
	}

	buf.WriteString(r.Message)

	for _, a := range rest {
		appendLogAttr(&buf, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendLogAttr(&buf, prefix, a)
		return true
	})

	buf.WriteString("\n")
	_, err := io.WriteString(h.out, buf.String())
	return err
}

// appendLogAttr renders one key=value pair, quoting values with spaces so
// lines stay machine-greppable.
func appendLogAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	value := a.Value.String()
	if strings.ContainsAny(value, " \t") {
		value = strconv.Quote(value)
	}
	buf.WriteString(color.HiBlackString(" " + key + "="))
	buf.WriteString(value)
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		out:    h.out,
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		out:    h.out,
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
