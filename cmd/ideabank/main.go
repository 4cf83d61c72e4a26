package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideabank/server/internal/database"
	"github.com/ideabank/server/internal/handler"
	"github.com/ideabank/server/internal/logger"
	"github.com/ideabank/server/internal/mcp"
	"github.com/ideabank/server/internal/repository"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/store"
	"github.com/urfave/cli/v2"
)

const defaultPort = "8080"

func main() {
	app := &cli.App{
		Name:  "ideabank",
		Usage: "Idea and task tracker for AI agents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   defaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Serve MCP tools over stdio",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ephemeral",
						Usage: "Use an in-memory store instead of PostgreSQL",
					},
				},
				Action: runMCP,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = defaultPort
	}

	db, err := openDatabase(ctx, c.String("database-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(repository.New(db.Pool()), service.AllowAllGate{})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runMCP(c *cli.Context) error {
	ctx := c.Context

	var st store.EntityStore
	if c.Bool("ephemeral") {
		slog.Info("using in-memory store")
		st = store.NewMemory()
	} else {
		db, err := openDatabase(ctx, c.String("database-url"))
		if err != nil {
			return err
		}
		defer db.Close()
		st = repository.New(db.Pool())
	}

	srv := mcp.NewServer(st, service.AllowAllGate{})

	slog.Info("starting MCP server on stdio")
	if err := srv.Run(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func openDatabase(ctx context.Context, databaseURL string) (*database.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set --database-url or DATABASE_URL)")
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
