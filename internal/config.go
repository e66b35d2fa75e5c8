package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// DefaultWorkingDirName is the sub-directory of the upload working directory
// that holds the tracker files.
const DefaultWorkingDirName = "default"

type Config struct {
	UploadWorkingDir   string        `env:"UPLOAD_WORKING_DIR"`
	ChunkSize          int           `env:"UPLOAD_CHUNK_SIZE,default=1048576" validate:"gt=0,lte=268435456"`
	RepositoryAddr     string        `env:"REPOSITORY_ADDR,default=localhost:50070" validate:"required,hostname_port"`
	AuthSecret         string        `env:"AUTH_SECRET" validate:"omitempty,min=16"`
	AuthSubject        string        `env:"AUTH_SUBJECT,default=content-repo-cli"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,default=5m" validate:"gt=0"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT,default=30s" validate:"gt=0"`
	JournalPath        string        `env:"JOURNAL_PATH"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	ResumeParallelism  int           `env:"RESUME_PARALLELISM,default=4" validate:"gt=0,lte=64"`
	MockRepositoryPort int           `env:"MOCK_REPOSITORY_PORT,default=50070" validate:"gt=0,lte=65535"`
}

var validate = validator.New()

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// BaseDir is the configured upload working directory, or a directory under
// the user's home when none is configured.
func (c Config) BaseDir() string {
	if c.UploadWorkingDir != "" {
		return c.UploadWorkingDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".content-repo", "uploads")
}

// UploadDir is where tracker files are kept.
func (c Config) UploadDir() string {
	return filepath.Join(c.BaseDir(), DefaultWorkingDirName)
}

// JournalDir is where the import history lives, next to the trackers by default.
func (c Config) JournalDir() string {
	if c.JournalPath != "" {
		return c.JournalPath
	}
	return filepath.Join(c.BaseDir(), "journal")
}
