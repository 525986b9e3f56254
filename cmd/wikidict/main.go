// Command wikidict looks up words in configured remote dictionaries.
//
// Usage:
//
//	wikidict -config wikidict.yaml -dict enwiki -word dog     # one lookup
//	wikidict -config wikidict.yaml -dict enwiki -search do    # prefix search
//	wikidict -config wikidict.yaml -serve :8080               # HTTP server
//	wikidict -config wikidict.yaml -mcp                       # MCP over stdio
//
// Without -config a built-in English Wikipedia + Forvo setup is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/wikidict/catalog"
)

func main() {
	configPath := flag.String("config", "", "path to wikidict.yaml config file")
	dictID := flag.String("dict", "enwiki", "dictionary id for -word and -search")
	word := flag.String("word", "", "look up one word and print the article")
	search := flag.String("search", "", "prefix-search one word and print matches")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio")
	markdown := flag.Bool("markdown", false, "print -word output as Markdown instead of HTML")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dictID, *word, *search, *serveAddr, *mcpMode, *markdown); err != nil {
		logger.Error("wikidict: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dictID, word, search, serveAddr string, mcpMode, markdown bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	svc, err := catalog.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	switch {
	case word != "":
		return runWord(ctx, svc, dictID, word, markdown)
	case search != "":
		return runSearch(ctx, svc, dictID, search)
	case serveAddr != "":
		return runServe(ctx, logger, svc, serveAddr)
	case mcpMode:
		return runMCP(ctx, svc)
	}

	fmt.Fprintln(os.Stderr, "usage: wikidict [-config <file>] -word <w> | -search <w> | -serve <addr> | -mcp")
	os.Exit(1)
	return nil
}

func loadConfig(path string) (*catalog.Config, error) {
	if path != "" {
		return catalog.LoadConfig(path)
	}
	return defaultConfig(), nil
}

// defaultConfig covers config-less invocations with English Wikipedia and
// English Forvo pronunciations.
func defaultConfig() *catalog.Config {
	cfg := &catalog.Config{
		Wikis: []catalog.WikiConfig{
			{ID: "enwiki", Name: "English Wikipedia", URL: "https://en.wikipedia.org/w"},
		},
		Forvo: catalog.ForvoConfig{Languages: []string{"en"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func runWord(ctx context.Context, svc *catalog.Service, dictID, word string, markdown bool) error {
	body, err := svc.Lookup(ctx, dictID, word)
	if err != nil {
		return err
	}
	if markdown {
		md, err := catalog.ToMarkdown(body)
		if err != nil {
			return err
		}
		fmt.Println(md)
		return nil
	}
	fmt.Println(string(body))
	return nil
}

func runSearch(ctx context.Context, svc *catalog.Service, dictID, word string) error {
	matches, err := svc.Search(ctx, dictID, word)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, svc *catalog.Service, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("wikidict: http listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runMCP(ctx context.Context, svc *catalog.Service) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "wikidict", Version: "1.0.0"}, nil)
	svc.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}
