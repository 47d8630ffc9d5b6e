package archive

import (
	"context"
	"fmt"
	"strings"

	"quantumassembler/internal/infra/archive/fs"
	"quantumassembler/internal/infra/archive/memory"
	"quantumassembler/internal/infra/archive/s3"
)

// Config selects and configures the archive backend.
type Config struct {
	Driver      string `mapstructure:"driver"`
	Root        string `mapstructure:"root"`
	Prefix      string `mapstructure:"prefix"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3PathStyle bool   `mapstructure:"s3_path_style"`
}

// Open returns the Store for cfg.Driver (fs|s3|memory, default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(cfg.Root)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", cfg.Driver)
	}
}

// NewMemory returns an in-memory store.
func NewMemory() Store { return memory.New() }

// NewS3Mock returns an S3 store backed by an in-process fake endpoint.
func NewS3Mock(pageSize int) Store { return s3.NewMockForTests(pageSize) }
