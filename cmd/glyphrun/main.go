// Command glyphrun runs glyph-language programs and renders their results.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/deixis/glyphrun"
	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/glyphs"
	"github.com/deixis/glyphrun/internal/logging"
	grmcp "github.com/deixis/glyphrun/internal/mcp"
	"github.com/deixis/glyphrun/internal/output"
	"github.com/deixis/glyphrun/internal/render"
	"github.com/deixis/glyphrun/internal/report"
	"github.com/deixis/glyphrun/internal/workflow"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("glyphrun: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "docs":
		err = docsMain(args)
	case "pad":
		err = padMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(glyphrun.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "glyphrun: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: glyphrun <command> [flags] [file]

Commands:
  run         Run a program and show its stack
  docs        Show the documentation of a primitive
  pad         Format a program and print its playground link
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Programs are read from -e, a file argument, or standard input.
Use "glyphrun <command> -h" for command-specific flags.`)
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	code := fs.String("e", "", "program text (instead of a file)")
	jsonFlag := fs.Bool("json", false, "print the run manifest as JSON")
	outDir := fs.String("o", "", "directory for audio and image files (default: a temp dir)")
	verboseFlag := fs.Bool("v", false, "log run details to stderr")
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5s)")
	_ = fs.Parse(args)

	src, err := readSource(*code, fs.Args())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, err := newEngine(*timeoutFlag, *verboseFlag)
	if err != nil {
		return err
	}

	result, err := eng.Run(ctx, src)
	var execErr *workflow.ExecutionError
	if errors.As(err, &execErr) {
		fmt.Fprintln(os.Stderr, execErr)
		os.Exit(1)
	}
	if err != nil {
		return err
	}

	if *jsonFlag || hasArtifacts(result) {
		m, err := report.NewDiskStore(*outDir).Save(result)
		if err != nil {
			return err
		}
		if *jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}
		fmt.Print(formatRunCLI(result, m))
		return nil
	}

	fmt.Print(formatRunCLI(result, nil))
	return nil
}

func hasArtifacts(result *workflow.RunResult) bool {
	for _, it := range result.Items {
		if len(it.Data) > 0 {
			return true
		}
	}
	return false
}

func formatRunCLI(result *workflow.RunResult, m *report.Manifest) string {
	var b []byte
	w := func(format string, args ...any) {
		b = fmt.Appendf(b, format, args...)
	}

	if len(result.Stdout) > 0 {
		w("%s", result.Stdout)
		if result.Truncated {
			w("(output truncated)\n")
		}
	}
	for i, it := range result.Items {
		if m != nil && (it.Kind == output.Audio || it.Kind == output.Image) {
			w("%s: %s\n", it.Kind, m.Items[i].File)
			continue
		}
		w("%s\n", it)
	}
	return string(b)
}

// --- docs ---

func docsMain(args []string) error {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("docs: expected one primitive name")
	}

	eng, err := newEngine(0, false)
	if err != nil {
		return err
	}
	name := fs.Arg(0)
	fmt.Println(eng.Docs(name))
	if render.Resolve(name) == nil {
		if names := render.Suggest(name); len(names) > 0 {
			fmt.Printf("Did you mean: %s?\n", strings.Join(names, ", "))
		}
	}
	return nil
}

// --- pad ---

func padMain(args []string) error {
	fs := flag.NewFlagSet("pad", flag.ExitOnError)
	code := fs.String("e", "", "program text (instead of a file)")
	_ = fs.Parse(args)

	src, err := readSource(*code, fs.Args())
	if err != nil {
		return err
	}

	eng, err := newEngine(0, false)
	if err != nil {
		return err
	}
	text, err := eng.Pad(src)
	if err != nil {
		return fmt.Errorf("pad: %w", err)
	}
	fmt.Println(text)
	return nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(grmcp.Instructions)
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
	logger := logging.New(cfg, os.Stderr)

	server := grmcp.NewServer(cfg, glyphs.MustLoad(), logger)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr, logger)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, logger *slog.Logger) error {
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

	logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	loaded, err := config.Load(wd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return loaded.Config, nil
}

func newEngine(timeoutOverride time.Duration, verbose bool) (*workflow.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if timeoutOverride > 0 {
		cfg.RawTimeout = timeoutOverride.String()
	}

	if verbose && cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	logger := logging.Discard()
	if cfg.Log.Level != "" {
		logger = logging.New(cfg, os.Stderr)
	}
	return workflow.NewEngine(cfg, glyphs.MustLoad(), logger), nil
}

// readSource returns the program from -e, a file argument, or stdin.
func readSource(code string, args []string) (string, error) {
	if code != "" {
		return code, nil
	}
	if len(args) > 1 {
		return "", errors.New("expected at most one file")
	}
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", fmt.Errorf("reading program: %w", err)
	}
	return string(data), nil
}
