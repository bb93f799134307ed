// ABOUTME: Entry point for the taskd personal task-management API server
// ABOUTME: Provides serve, init, and health subcommands

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/taskd/internal/config"
	"github.com/2389/taskd/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _            _       _
 | |_ __ _ ___| | ____| |
 | __/ _' / __| |/ / _' |
 | || (_| \__ \   < (_| |
  \__\__,_|___/_|\_\__,_|
`

// getConfigPath returns the path to the taskd config file.
// Priority: TASKD_CONFIG env var > XDG_CONFIG_HOME/taskd/config.yaml > ~/.config/taskd/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TASKD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "taskd", "config.yaml")
}

// getDataPath returns the path to the taskd data directory.
// Priority: XDG_DATA_HOME/taskd > ~/.local/share/taskd
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "taskd")
}

// loadConfig loads the config file, or falls back to TASKD_* environment
// variables alone when no file exists.
func loadConfig(path string) (*config.Config, string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg, err := config.FromEnv()
		if err != nil {
			return nil, "", fmt.Errorf("no config file at %s and environment is incomplete: %w", path, err)
		}
		return cfg, "(environment)", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: taskd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the API server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check server health")
		fmt.Println("  version  Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, source, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	// Setup logger; the store logs through the default logger
	logger := setupLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", source)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}

	fmt.Println()

	logger.Info("starting taskd",
		"config", source,
		"http_addr", cfg.Server.HTTPAddr,
		"token_ttl", cfg.Auth.TokenTTL,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	if cfg.Server.HTTPAddr == "" {
		return errors.New("health check needs server.http_addr; tailnet-only servers are not probed")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
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

// generateSecret returns a random base64 secret suitable for auth.jwt_secret.
func generateSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "taskd configuration setup")
	fmt.Fprintln(out, "=========================")
	fmt.Fprintln(out)

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "taskd.db")

	// Output filename
	outputFile := prompt(reader, out, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Fprintln(out, "\n--- Server Configuration ---")
	httpAddr := prompt(reader, out, "HTTP address", config.DefaultHTTPAddr)
	corsOrigin := prompt(reader, out, "Allowed browser origin (leave empty to disable CORS)", "")

	// Database
	fmt.Fprintln(out, "\n--- Database Configuration ---")
	dbPath := prompt(reader, out, "SQLite database path", defaultDbPath)

	// Auth
	fmt.Fprintln(out, "\n--- Auth Configuration ---")
	tokenTTL := prompt(reader, out, "Token lifetime", "24h")
	if _, err := time.ParseDuration(tokenTTL); err != nil {
		return fmt.Errorf("invalid token lifetime %q: %w", tokenTTL, err)
	}
	jwtSecret, err := generateSecret()
	if err != nil {
		return err
	}

	// Tailscale
	fmt.Fprintln(out, "\n--- Tailscale Configuration ---")
	tailscaleEnabled := yes(prompt(reader, out, "Enable Tailscale?", "no"))

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, out, "Tailscale hostname", "taskd")
		tsAuthKey = prompt(reader, out, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = yes(prompt(reader, out, "Ephemeral node?", "no"))
		tsFunnel = yes(prompt(reader, out, "Enable Funnel (public HTTPS)?", "no"))
	}

	// Logging
	fmt.Fprintln(out, "\n--- Logging Configuration ---")
	logLevel := prompt(reader, out, "Log level (debug/info/warn/error)", config.DefaultLogLevel)
	logFormat := prompt(reader, out, "Log format (text/json)", config.DefaultLogFormat)

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# taskd configuration\n")
	cfg.WriteString("# Generated by taskd init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	if corsOrigin != "" {
		cfg.WriteString("  cors_origins:\n")
		cfg.WriteString(fmt.Sprintf("    - %q\n", corsOrigin))
	}
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", jwtSecret))
	cfg.WriteString(fmt.Sprintf("  token_ttl: %q\n", tokenTTL))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the signing secret, so it is private to the owner
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  taskd serve")

	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}
