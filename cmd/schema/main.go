// Command schema prints the roster OpenAPI document without a database.
//
// Usage:
//
//	go run ./cmd/schema -format yaml -o openapi.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/penshort/roster/internal/config"
	"github.com/penshort/roster/internal/resource"
	"github.com/penshort/roster/internal/router"
	"github.com/penshort/roster/internal/schema"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	output := fs.String("o", "", "write to file instead of stdout")
	prefix := fs.String("server-url", "/api", "base path the API is mounted under")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := schema.ParseFormat(*format)
	if err != nil {
		return err
	}

	cfg, err := config.LoadSchema()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	r := router.NewSimpleRouter()
	resource.Register(r, resource.EmptyStores(), logger, nil)

	doc, err := schema.NewGenerator(r.Routes(), schema.Options{
		Title:       cfg.Title,
		Version:     cfg.Version,
		Description: cfg.Description,
		ServerURL:   *prefix,
		Logger:      logger,
	}).Generate(ctx)
	if err != nil {
		return err
	}

	data, err := schema.Encode(doc, f)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	return nil
}
