package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tika-bridge/config"
	"github.com/wippyai/tika-bridge/envelope"
	"github.com/wippyai/tika-bridge/extractor"
	"github.com/wippyai/tika-bridge/runtime"
	"github.com/wippyai/tika-bridge/vm"
	"github.com/wippyai/tika-bridge/vm/jni"
)

type options struct {
	file        string
	url         string
	stdin       bool
	asString    bool
	batch       string
	configPath  string
	envFile     string
	classPath   string
	chunk       int
	showMeta    bool
	metricsAddr string
	verbose     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.file, "file", "", "Path of a document to extract")
	flag.StringVar(&o.url, "url", "", "URL of a document to extract")
	flag.BoolVar(&o.stdin, "stdin", false, "Read document bytes from stdin")
	flag.BoolVar(&o.asString, "string", false, "Extract to a string (truncated to max_length) instead of streaming")
	flag.StringVar(&o.batch, "batch", "", "Comma-separated paths to extract as strings")
	flag.StringVar(&o.configPath, "config", "", "YAML config file")
	flag.StringVar(&o.envFile, "env", "", ".env file to load (default .env)")
	flag.StringVar(&o.classPath, "classpath", "", "JVM class path, overrides config and "+config.EnvClassPath)
	flag.IntVar(&o.chunk, "chunk", 32*1024, "Read buffer size when streaming")
	flag.BoolVar(&o.showMeta, "meta", false, "Print metadata after the text")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.BoolVar(&o.verbose, "v", false, "Verbose logging")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	sources := 0
	for _, set := range []bool{o.file != "", o.url != "", o.stdin, o.batch != "", o.interactive} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(os.Stderr, "Usage: extract -file <path> [-string] [-meta]")
		fmt.Fprintln(os.Stderr, "       extract -url <url> [-string] [-meta]")
		fmt.Fprintln(os.Stderr, "       extract -stdin [-string] < document")
		fmt.Fprintln(os.Stderr, "       extract -batch a.pdf,b.docx")
		fmt.Fprintln(os.Stderr, "       extract -i  (interactive mode)")
		os.Exit(2)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func loadConfig(o options) (*config.File, error) {
	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if o.classPath != "" {
		cfg.Runtime.ClassPath = o.classPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.OCR.CheckLanguages(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(o options) error {
	if o.interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	log, err := newLogger(o.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	vm.SetLogger(log.Named("vm"))
	runtime.SetLogger(log.Named("runtime"))

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := runtime.NewMetrics(prometheus.DefaultRegisterer)
	if o.metricsAddr != "" {
		srv := serveMetrics(o.metricsAddr, log)
		defer shutdown(srv, log)
	}

	rt, err := runtime.Init(
		jni.Opener(jni.Options{ClassPath: cfg.Runtime.ClassPath, JVMOptions: cfg.Runtime.JVMOptions}),
		runtime.WithLogger(log.Named("runtime")),
		runtime.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	defer rt.Close()

	ex, err := extractor.New(rt, extractor.WithConfig(cfg), extractor.WithLogger(log.Named("extractor")))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	switch {
	case o.interactive:
		return runInteractive(ctx, ex)
	case o.batch != "":
		return runBatch(ctx, ex, out, splitList(o.batch), cfg.Extractor.Concurrency, o.showMeta)
	case o.asString:
		text, md, err := extractString(ctx, ex, o)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		if o.showMeta {
			printMetadata(out, md)
		}
		return nil
	default:
		res, err := extractStream(ctx, ex, o)
		if err != nil {
			return err
		}
		defer res.Close()
		if _, err := io.CopyBuffer(out, res, make([]byte, max(o.chunk, 1))); err != nil {
			return err
		}
		if o.showMeta {
			printMetadata(out, res.Metadata)
		}
		return nil
	}
}

func extractString(ctx context.Context, ex *extractor.Extractor, o options) (string, envelope.Metadata, error) {
	switch {
	case o.url != "":
		return ex.ExtractURLToString(ctx, o.url)
	case o.stdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return ex.ExtractBytesToString(ctx, data)
	default:
		return ex.ExtractFileToString(ctx, o.file)
	}
}

func extractStream(ctx context.Context, ex *extractor.Extractor, o options) (*extractor.Result, error) {
	switch {
	case o.url != "":
		return ex.ExtractURL(ctx, o.url)
	case o.stdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return ex.ExtractBytes(ctx, data)
	default:
		return ex.ExtractFile(ctx, o.file)
	}
}

func runBatch(ctx context.Context, ex *extractor.Extractor, out io.Writer, paths []string, limit int, showMeta bool) error {
	results, err := ex.BatchToString(ctx, paths, limit)
	failed := 0
	for _, r := range results {
		fmt.Fprintf(out, "==> %s <==\n", r.Path)
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "error: %v\n\n", r.Err)
			continue
		}
		fmt.Fprintln(out, r.Content)
		if showMeta {
			printMetadata(out, r.Metadata)
		}
		fmt.Fprintln(out)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func printMetadata(w io.Writer, md envelope.Metadata) {
	fmt.Fprintln(w, "\n--- metadata ---")
	for _, name := range md.Names() {
		fmt.Fprintf(w, "%s: %s\n", name, strings.Join(md[name], ", "))
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
