// Package main provides a standalone health check command for the pantry service
// This command can be used for Docker health checks, monitoring scripts, and debugging
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/container"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"go.uber.org/fx"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Config holds command-line configuration
type Config struct {
	URL            string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
	ConfigPath     string
	LocalCheck     bool
}

func main() {
	config := parseFlags()

	if config.LocalCheck {
		os.Exit(runLocalHealthCheck(config))
	}
	os.Exit(runRemoteHealthCheck(config))
}

// parseFlags parses command-line flags
func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.URL, "url", "", "Health check endpoint URL (e.g., http://localhost:8080/health)")
	flag.DurationVar(&config.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&config.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&config.OutputFormat, "format", "text", "Output format: text, json, compact")
	flag.StringVar(&config.ExpectedStatus, "expect", "healthy", "Expected status: healthy, degraded, unhealthy")
	flag.IntVar(&config.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&config.RetryDelay, "retry-delay", 1*time.Second, "Delay between retries")
	flag.StringVar(&config.ConfigPath, "config", "", "Configuration file path")
	flag.BoolVar(&config.LocalCheck, "local", false, "Check the configured store and AI provider directly instead of over HTTP")

	flag.Parse()

	if config.URL == "" && !config.LocalCheck {
		config.URL = os.Getenv("HEALTH_CHECK_URL")
		if config.URL == "" {
			config.URL = "http://localhost:8080/health"
		}
	}

	return config
}

// runRemoteHealthCheck performs a remote health check via HTTP
func runRemoteHealthCheck(config Config) int {
	client := &http.Client{Timeout: config.Timeout}

	var lastError error
	for attempt := 0; attempt <= config.RetryCount; attempt++ {
		if attempt > 0 {
			if config.Verbose {
				fmt.Printf("Retrying in %v... (attempt %d/%d)\n", config.RetryDelay, attempt, config.RetryCount)
			}
			time.Sleep(config.RetryDelay)
		}

		resp, err := client.Get(config.URL)
		if err != nil {
			lastError = err
			if config.Verbose {
				fmt.Printf("Request failed: %v\n", err)
			}
			continue
		}

		return handleResponse(resp, config)
	}

	fmt.Printf("Health check failed after %d attempts: %v\n", config.RetryCount+1, lastError)
	return exitCodeError
}

// runLocalHealthCheck wires the configured store and categorizer and checks them in process
func runLocalHealthCheck(config Config) int {
	if config.ConfigPath != "" {
		os.Setenv(container.ConfigPathEnv, config.ConfigPath)
	}

	var hc *healthcheck.HealthCheck
	app := fx.New(
		fx.NopLogger,
		container.ConfigModule,
		container.LoggerModule,
		container.EventModule,
		container.StorageModule,
		container.ServiceModule,
		fx.Provide(container.NewHealthCheck),
		fx.Populate(&hc),
	)
	if err := app.Err(); err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		return exitCodeError
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Printf("Failed to start dependencies: %v\n", err)
		return exitCodeError
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return outputResult(hc.Check(ctx), config)
}

// handleResponse handles the HTTP response
func handleResponse(resp *http.Response, config Config) int {
	defer resp.Body.Close()

	var response healthcheck.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		return exitCodeError
	}

	return outputResult(response, config)
}

// outputResult outputs the result based on the configured format
func outputResult(result healthcheck.Response, config Config) int {
	switch config.OutputFormat {
	case "json":
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	case "compact":
		data, _ := json.Marshal(result)
		fmt.Println(string(data))
	default: // text
		outputText(result, config.Verbose)
	}

	// Determine exit code based on status
	expectedStatus := healthcheck.Status(config.ExpectedStatus)
	switch {
	case result.Status == expectedStatus:
		return exitCodeSuccess
	case result.Status == healthcheck.StatusUnhealthy || result.Status == "":
		return exitCodeFailure
	case result.Status == healthcheck.StatusDegraded && expectedStatus == healthcheck.StatusHealthy:
		return exitCodeFailure
	default:
		return exitCodeSuccess
	}
}

// outputText outputs the result in text format
func outputText(r healthcheck.Response, verbose bool) {
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Version: %s\n", r.Version)
	fmt.Printf("Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Printf("Duration: %dms\n", r.TotalDuration.Milliseconds())

	if verbose && len(r.Checks) > 0 {
		fmt.Println("\nChecks:")
		for _, check := range r.Checks {
			fmt.Printf("  %s: %s", check.Name, check.Status)
			if check.Message != "" {
				fmt.Printf(" (%s)", check.Message)
			}
			fmt.Printf(" [%dms]\n", check.Duration.Milliseconds())
		}
	}
}
