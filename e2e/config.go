package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_REPOSITORY_ADDR points at a running repository, e.g. cmd/mockrepo. The suite is skipped when empty
	RepositoryAddr string `envconfig:"E2E_REPOSITORY_ADDR"`
	AuthSecret     string `envconfig:"AUTH_SECRET"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours   bool `envconfig:"E2E_COLOURS" default:"true"`
	ChunkSize int  `envconfig:"E2E_CHUNK_SIZE" default:"65536"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
