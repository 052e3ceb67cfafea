package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/container"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Inspect   InspectConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type ContainerConfig struct {
	ID           string // empty: random UUID
	LogLevel     string // logrus level name
	Metrics      bool   // register instruments in metrics.DefaultRegistry
	EnvNamespace string // resource namespace serving environment variables
}

type InspectConfig struct {
	Addr   string
	Prefix string // mount point of the endpoints, "/" by default
	Token  string // bearer token required by the endpoints when set
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoInject"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
		},
		Container: ContainerConfig{
			ID:           env("INJECT_CONTAINER_ID", ""),
			LogLevel:     env("INJECT_LOG_LEVEL", "info"),
			Metrics:      envBool("INJECT_METRICS", true),
			EnvNamespace: env("INJECT_ENV_NAMESPACE", "env"),
		},
		Inspect: InspectConfig{
			Addr:   env("INSPECT_ADDR", ":8089"),
			Prefix: env("INSPECT_PREFIX", "/"),
			Token:  env("INSPECT_TOKEN", ""),
		},
	}
}

// Level returns the logrus level, falling back to info on an unknown name.
// APP_DEBUG forces debug.
func (c *Config) Level() logrus.Level {
	if c.App.Debug {
		return logrus.DebugLevel
	}
	lvl, err := logrus.ParseLevel(c.Container.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── Resource getters ──────────────────────────────────────────────────────────

// Getter serves environment variables as resources, for instance under the
// "env" namespace: c.Get("env:APP_NAME").
func Getter(name string) (any, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, container.ErrResourceNotFound
	}
	return v, nil
}

// FileGetter serves the variables of dotenv files without touching the
// process environment. Later files override earlier ones.
func FileGetter(files ...string) (func(name string) (any, error), error) {
	values := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			return nil, errors.Wrapf(err, "config: read %s", f)
		}
		for k, v := range m {
			values[k] = v
		}
	}
	return func(name string) (any, error) {
		v, ok := values[name]
		if !ok {
			return nil, container.ErrResourceNotFound
		}
		return v, nil
	}, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
