package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Storage driver names accepted by the --driver flag.
const (
	DriverLocal  = "local"
	DriverS3     = "s3"
	DriverSQLite = "sqlite"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Groq API configuration. The API is OpenAI-compatible.
	GroqAPIKey  string // ONCOBRIEF_GROQ_API_KEY (required)
	GroqModel   string // ONCOBRIEF_GROQ_MODEL (default: llama-3.1-8b-instant)
	GroqBaseURL string // ONCOBRIEF_GROQ_BASE_URL (default: https://api.groq.com/openai/v1)

	// CORSOrigins is the list of allowed cross-origin request sources.
	CORSOrigins []string // ONCOBRIEF_CORS_ORIGINS (comma-separated)

	// Driver selects the conversation storage backend (local, s3 or sqlite).
	Driver string // ONCOBRIEF_DRIVER (default: local)
	// MemoryDir is the directory for local conversation files.
	MemoryDir string // ONCOBRIEF_MEMORY_DIR (default: memory)
	// S3 configuration, used when Driver is "s3".
	S3Bucket    string // ONCOBRIEF_S3_BUCKET
	S3Region    string // ONCOBRIEF_S3_REGION
	S3Endpoint  string // ONCOBRIEF_S3_ENDPOINT (optional, for S3-compatible stores)
	S3AccessKey string // ONCOBRIEF_S3_ACCESS_KEY (optional, falls back to the SDK chain)
	S3SecretKey string // ONCOBRIEF_S3_SECRET_KEY
	// DSN points to the sqlite database file, used when Driver is "sqlite".
	DSN string // ONCOBRIEF_DSN

	// SystemPromptPath optionally overrides the embedded system prompt.
	SystemPromptPath string // ONCOBRIEF_SYSTEM_PROMPT_PATH
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// UseS3 reports whether conversation histories live in object storage.
func (p *Profile) UseS3() bool {
	return p.Driver == DriverS3
}

// Validate normalizes the profile and rejects configurations the server
// cannot start with.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if strings.TrimSpace(p.GroqAPIKey) == "" {
		return errors.New("GROQ_API_KEY is not set; add it to the environment or .env file")
	}

	switch p.Driver {
	case DriverLocal:
		dir, err := resolveMemoryDir(p.MemoryDir)
		if err != nil {
			return err
		}
		p.MemoryDir = dir
	case DriverS3:
		if p.S3Bucket == "" {
			return errors.New("S3 bucket is required when the s3 driver is selected")
		}
	case DriverSQLite:
		if p.DSN == "" {
			p.DSN = filepath.Join("data", "oncobrief.db")
		}
		if err := os.MkdirAll(filepath.Dir(p.DSN), 0o755); err != nil {
			return errors.Wrapf(err, "unable to create database directory for %s", p.DSN)
		}
	default:
		return errors.Errorf("unknown storage driver %q (valid: local, s3, sqlite)", p.Driver)
	}

	return nil
}

func resolveMemoryDir(dir string) (string, error) {
	if dir == "" {
		dir = "memory"
	}
	if !filepath.IsAbs(dir) {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		dir = absDir
	}
	dir = strings.TrimRight(dir, "\\/")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "unable to create memory directory %s", dir)
	}
	return dir, nil
}
