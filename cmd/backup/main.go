// Command backup exports the ledger to, or restores it from, a backup
// document without going through the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"RentalLedger/internal/backup"
	"RentalLedger/internal/config"
	"RentalLedger/internal/logger"
	"RentalLedger/internal/models"
	"RentalLedger/internal/services"
	"RentalLedger/internal/store"
)

var exitFunc = os.Exit

const usage = `usage:
  backup export [-config path] [-o file]
  backup restore [-config path] (-name backup-name | -file path)
`

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	cmd := args[0]
	fs := flag.NewFlagSet("backup "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	out := fs.String("o", "", "export: write the backup to this file instead of the configured target")
	name := fs.String("name", "", "restore: backup name in the configured target")
	file := fs.String("file", "", "restore: local backup file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var err error
	switch cmd {
	case "export":
		err = runExport(ctx, *configPath, *out, stdout)
	case "restore":
		err = runRestore(ctx, *configPath, *name, *file, stdout)
	default:
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "backup %s failed: %v\n", cmd, err)
		return 1
	}
	return 0
}

type env struct {
	cfg    *config.Config
	docs   store.Documents
	ledger *services.Ledger
}

func open(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}
	models.Location = loc

	docs, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	ledger := services.NewLedger(docs, services.Options{Logger: lg})
	if err := ledger.Load(ctx); err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &env{cfg: cfg, docs: docs, ledger: ledger}, nil
}

func (e *env) target(ctx context.Context) (backup.Target, error) {
	c := e.cfg.Backup
	return backup.NewTarget(ctx, c.Target, c.Dir, backup.S3Config{
		Bucket:          c.S3.Bucket,
		Region:          c.S3.Region,
		Endpoint:        c.S3.Endpoint,
		Prefix:          c.S3.Prefix,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		PathStyle:       c.S3.PathStyle,
	})
}

func runExport(ctx context.Context, configPath, out string, stdout io.Writer) error {
	e, err := open(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = e.docs.Close() }()

	b := e.ledger.Export()
	if out != "" {
		payload, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, payload, 0o600); err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, out)
		return err
	}

	target, err := e.target(ctx)
	if err != nil {
		return err
	}
	location, err := backup.Write(ctx, target, b)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, location)
	return err
}

func runRestore(ctx context.Context, configPath, name, file string, stdout io.Writer) error {
	if (name == "") == (file == "") {
		return errors.New("exactly one of -name or -file is required")
	}
	e, err := open(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = e.docs.Close() }()

	var payload []byte
	if file != "" {
		payload, err = os.ReadFile(file)
	} else {
		var target backup.Target
		if target, err = e.target(ctx); err == nil {
			payload, err = target.Load(ctx, name)
		}
	}
	if err != nil {
		return err
	}
	if err := e.ledger.Restore(ctx, payload); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "restored %d orders, %d products\n", len(e.ledger.Orders()), len(e.ledger.Products()))
	return err
}
