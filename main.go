// Command synacor is the CLI entry point: it loads a binary image,
// optional replay and injection files, and either drops into an
// interactive debugging REPL or starts the HTTP/WebSocket API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/lux01/synacor/api"
	"github.com/lux01/synacor/config"
	"github.com/lux01/synacor/debugger"
	"github.com/lux01/synacor/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	optBinary := getopt.StringLong("binary", 'b', "", "Path to a Synacor binary image")
	optReplay := getopt.StringLong("replay", 'r', "", "Path to a replay input file")
	optInjections := getopt.StringLong("injections", 'i', "", "Path to an injection JSON file")
	optConfig := getopt.StringLong("config", 'c', "", "Path to a config file (defaults to the platform config dir)")
	optAPIServer := getopt.BoolLong("api-server", 'a', "Start the HTTP API server instead of the REPL")
	optPort := getopt.IntLong("port", 'p', 0, "Port for the API server (overrides config)")
	optVersion := getopt.BoolLong("version", 'V', "Show version information")
	optHelp := getopt.BoolLong("help", 'h', "Show this help message")
	getopt.Parse()

	if *optHelp {
		printUsage()
		os.Exit(0)
	}

	if *optVersion {
		fmt.Printf("synacor %s (commit %s, built %s)\n", Version, Commit, Date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*optConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synacor: %v\n", err)
		os.Exit(1)
	}

	if *optAPIServer {
		port := cfg.API.Port
		if *optPort != 0 {
			port = *optPort
		}
		runAPIServer(port)
		return
	}

	binaryPath := *optBinary
	if binaryPath == "" {
		binaryPath = cfg.Paths.Binary
	}
	replayPath := *optReplay
	if replayPath == "" {
		replayPath = cfg.Paths.Replay
	}
	injectionsPath := *optInjections
	if injectionsPath == "" {
		injectionsPath = cfg.Paths.Injections
	}

	if binaryPath == "" {
		fmt.Fprintln(os.Stderr, "synacor: a binary image is required (-b/--binary or paths.binary in config)")
		printUsage()
		os.Exit(1)
	}

	dbg, err := buildDebugger(binaryPath, replayPath, injectionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synacor: %v\n", err)
		os.Exit(1)
	}
	dbg.Configure(cfg)

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "synacor: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file at path, or the default platform
// path when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// buildDebugger reads the binary and the optional replay/injection
// files from disk and wires them into a fresh Debugger.
func buildDebugger(binaryPath, replayPath, injectionsPath string) (*debugger.Debugger, error) {
	binary, err := loader.LoadBinaryFile(binaryPath)
	if err != nil {
		return nil, err
	}

	var replay []rune
	if replayPath != "" {
		replay, err = loader.LoadReplayFile(replayPath)
		if err != nil {
			return nil, err
		}
	}

	var injections []loader.Injection
	if injectionsPath != "" {
		injections, err = loader.LoadInjectionFile(injectionsPath)
		if err != nil {
			return nil, err
		}
	}

	return debugger.NewDebugger(binary, replay, injections, os.Stdin, os.Stdout)
}

// runAPIServer starts the HTTP API server and blocks until it
// receives SIGINT or SIGTERM, at which point it shuts down gracefully.
func runAPIServer(port int) {
	server := api.NewServer(port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "synacor: api server: %v\n", err)
			os.Exit(1)
		}
	case <-sig:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "synacor: api server shutdown: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println("synacor: a Synacor challenge VM and interactive debugger")
	fmt.Println()
	getopt.Usage()
}
