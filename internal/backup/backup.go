package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"RentalLedger/internal/services"
)

var ErrNotFound = errors.New("backup not found")

// Target stores backup documents by name.
type Target interface {
	Save(ctx context.Context, name string, payload []byte) (string, error)
	Load(ctx context.Context, name string) ([]byte, error)
}

// Name is the default file name of a backup taken at t.
func Name(t time.Time) string {
	return fmt.Sprintf("rental-backup-%s.json", t.UTC().Format("2006-01-02T150405Z"))
}

func validName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return nil
}

// Write encodes b and saves it under its default name, returning where it
// was written.
func Write(ctx context.Context, target Target, b services.Backup) (string, error) {
	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return target.Save(ctx, Name(b.BackupDate), payload)
}

const (
	TargetFile = "file"
	TargetS3   = "s3"
)

// NewTarget builds the configured backup target.
func NewTarget(ctx context.Context, kind, dir string, s3cfg S3Config) (Target, error) {
	switch strings.ToLower(kind) {
	case "", TargetFile:
		return File{Dir: dir}, nil
	case TargetS3:
		s, err := NewS3(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backup target %q", kind)
}
