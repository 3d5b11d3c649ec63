package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hrms-backend/internal/app"
	"hrms-backend/internal/cli"
	"hrms-backend/internal/platform/db"
)

func load(ctx context.Context, path string) (*cli.Services, func(), error) {
	cfg, err := db.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	svc := &cli.Services{
		Attendance: a.Attendance,
		Staging:    a.Staging,
		Raw:        a.Raw,
		Sequences:  a.Sequences,
	}
	return svc, func() { conn.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(load, db.DefaultConfigPath()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
