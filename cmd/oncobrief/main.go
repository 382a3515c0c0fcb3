package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/server"
	"github.com/oncobrief/oncobrief/server/ai"
	"github.com/oncobrief/oncobrief/server/chat"
	"github.com/oncobrief/oncobrief/store"
	"github.com/oncobrief/oncobrief/store/db/localfile"
	"github.com/oncobrief/oncobrief/store/db/s3"
	"github.com/oncobrief/oncobrief/store/db/sqlite"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "oncobrief",
	Short: "Chat backend for the cancer-research PDF summarizer assistant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile := buildProfile()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), instanceProfile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `server mode, can be "dev" or "prod"`)
	flags.String("addr", "", "address of the server")
	flags.Int("port", 8000, "port of the server")
	flags.String("driver", profile.DriverLocal, `conversation storage driver, can be "local", "s3" or "sqlite"`)
	flags.String("memory-dir", "memory", "directory for local conversation files")
	flags.String("dsn", "", "database source name for the sqlite driver")

	for _, flag := range []string{"mode", "addr", "port", "driver", "memory-dir", "dsn"} {
		if err := viper.BindPFlag(flag, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("oncobrief")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// groq-model and cors-origins default later so the bare legacy
	// environment names still win over a built-in default.
	viper.SetDefault("groq-base-url", "https://api.groq.com/openai/v1")
}

// getEnvFallback supports the bare (unprefixed) environment names the
// original deployment used alongside the ONCOBRIEF_* ones.
func getEnvFallback(viperKey, legacyKey string) string {
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return os.Getenv(legacyKey)
}

func buildProfile() *profile.Profile {
	driver := viper.GetString("driver")
	// The original deployment selected object storage with USE_S3=true.
	if !viper.IsSet("driver") && strings.EqualFold(os.Getenv("USE_S3"), "true") {
		driver = profile.DriverS3
	}

	corsOrigins := getEnvFallback("cors-origins", "CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	memoryDir := viper.GetString("memory-dir")
	if v := os.Getenv("MEMORY_DIR"); v != "" && !viper.IsSet("memory-dir") {
		memoryDir = v
	}

	return &profile.Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		Version:          version,
		GroqAPIKey:       getEnvFallback("groq-api-key", "GROQ_API_KEY"),
		GroqModel:        getEnvFallback("groq-model", "GROQ_MODEL_NAME"),
		GroqBaseURL:      viper.GetString("groq-base-url"),
		CORSOrigins:      strings.Split(corsOrigins, ","),
		Driver:           driver,
		MemoryDir:        memoryDir,
		S3Bucket:         getEnvFallback("s3-bucket", "S3_BUCKET"),
		S3Region:         getEnvFallback("s3-region", "AWS_REGION"),
		S3Endpoint:       viper.GetString("s3-endpoint"),
		S3AccessKey:      viper.GetString("s3-access-key"),
		S3SecretKey:      viper.GetString("s3-secret-key"),
		DSN:              viper.GetString("dsn"),
		SystemPromptPath: viper.GetString("system-prompt-path"),
	}
}

func newDriver(ctx context.Context, p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case profile.DriverS3:
		return s3.NewDriver(ctx, p)
	case profile.DriverSQLite:
		return sqlite.NewDriver(ctx, p)
	default:
		return localfile.NewDriver(p)
	}
}

func newLogger(p *profile.Profile) *slog.Logger {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, p *profile.Profile) error {
	logger := newLogger(p)

	provider, err := ai.NewProvider(&ai.Config{
		BaseURL:   p.GroqBaseURL,
		APIKey:    p.GroqAPIKey,
		ChatModel: p.GroqModel,
	})
	if err != nil {
		return err
	}

	driver, err := newDriver(ctx, p)
	if err != nil {
		return err
	}
	st := store.New(driver, p)

	systemPrompt, err := chat.LoadSystemPrompt(p.SystemPromptPath)
	if err != nil {
		return err
	}

	chatService := chat.NewService(st, provider, systemPrompt, logger)
	srv := server.NewServer(p, st, chatService, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("oncobrief started",
		slog.String("version", version),
		slog.String("mode", p.Mode),
		slog.String("driver", p.Driver),
		slog.String("model", provider.Model()),
		slog.String("listen", fmt.Sprintf("%s:%d", p.Addr, p.Port)))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srv.Shutdown(context.Background())
	return nil
}

func main() {
	// Optional .env file, ignored when absent.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
