// Command helmbridge bridges MCP tool calls to the helmfile CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/deixis/helmbridge"
	"github.com/deixis/helmbridge/internal/config"
	"github.com/deixis/helmbridge/internal/executor"
	"github.com/deixis/helmbridge/internal/helmfile"
	"github.com/deixis/helmbridge/internal/logging"
	bridgemcp "github.com/deixis/helmbridge/internal/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("helmbridge: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(args)
	case "run":
		err = runMain(args)
	case "sync":
		err = syncMain(args)
	case "version":
		fmt.Println(helmbridge.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "helmbridge: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: helmbridge <command> [flags] [args]

Commands:
  mcp         Start the MCP server on stdio (or HTTP with -http)
  run         Run a helmfile command and print the result
  sync        Synchronise releases from a helmfile configuration
  version     Print the version
  help        Show this help

Use "helmbridge <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(bridgemcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)

	server := bridgemcp.NewServer(cfg, newExecutor(cfg, &logger), logger)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr, logger)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, logger zerolog.Logger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	logger.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5m)")
	jsonFlag := fs.Bool("json", false, "output the result as JSON")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("run: no command given")
	}
	command := strings.Join(fs.Args(), " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	tool := helmfile.Tool{Binary: cfg.Binary()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := newExecutor(cfg, &logger).Execute(ctx, tool.Normalize(command), *timeoutFlag)
	return emit(res, *jsonFlag)
}

// --- sync ---

func syncMain(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	pathFlag := fs.String("f", "", "path to the helmfile configuration file (required)")
	nsFlag := fs.String("n", "", "namespace to target")
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5m)")
	jsonFlag := fs.Bool("json", false, "output the result as JSON")
	_ = fs.Parse(args)

	if *pathFlag == "" {
		return fmt.Errorf("sync: -f is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	tool := helmfile.Tool{Binary: cfg.Binary()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := newExecutor(cfg, &logger).Execute(ctx, tool.Sync(*pathFlag, *nsFlag), *timeoutFlag)
	return emit(res, *jsonFlag)
}

// --- shared ---

func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newExecutor(cfg *config.Config, logger *zerolog.Logger) *executor.Executor {
	return &executor.Executor{
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
		Log:       logger,
	}
}

func emit(res *executor.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.OK() {
		fmt.Println(res.Output)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", res.Err.Code, res.Err.Message)
	}

	if !res.OK() {
		os.Exit(1)
	}
	return nil
}
