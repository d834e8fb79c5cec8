package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cpubars/internal/render"
	"cpubars/internal/system"
)

type ReportMode string

const (
	ReportModeOff       ReportMode = ""
	ReportModeGRPC      ReportMode = "grpc"
	ReportModeWebSocket ReportMode = "websocket"
)

const DefaultDelayMillis = 100

var (
	ErrInvalidDelay      = errors.New("delay must be a positive number of milliseconds")
	ErrUnknownReportMode = errors.New("unknown report mode")
)

type Config struct {
	NodeID      string
	Hostname    string
	StatPath    string
	Delay       time.Duration
	ANSI        bool
	Tmux        bool
	Color       string
	ColorMode   render.ColorMode
	GreenUntil  float64
	YellowUntil float64
	Palette     string

	LogLevel string
	LogJSON  bool

	ReportMode       ReportMode
	ReportGRPCAddr   string
	ReportGRPCMethod string
	ReportWSURL      string
	ReportToken      string
	ReportTimeout    time.Duration

	TLSEnabled    bool
	TLSSkipVerify bool
	TLSCAPath     string
	TLSCertPath   string
	TLSKeyPath    string
}

// Load reads .env (if present) and CPUBARS_* variables, then applies
// command-line flags on top and validates the result.
func Load(args []string, stderr io.Writer) (Config, error) {
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.applyFlags(args, stderr); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv() Config {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	return Config{
		NodeID:           env("CPUBARS_NODE_ID", hostname),
		Hostname:         hostname,
		StatPath:         env("CPUBARS_STAT_PATH", system.DefaultStatPath),
		Delay:            time.Duration(envInt("CPUBARS_DELAY", DefaultDelayMillis)) * time.Millisecond,
		ANSI:             envBool("CPUBARS_ANSI", false),
		Tmux:             envBool("CPUBARS_TMUX", false),
		Color:            env("CPUBARS_COLOR", ""),
		GreenUntil:       envFloat("CPUBARS_GREEN_UNTIL", render.DefaultThresholds().GreenUntil),
		YellowUntil:      envFloat("CPUBARS_YELLOW_UNTIL", render.DefaultThresholds().YellowUntil),
		Palette:          envRaw("CPUBARS_PALETTE", render.DefaultPalette),
		LogLevel:         strings.ToLower(env("CPUBARS_LOG_LEVEL", "warn")),
		LogJSON:          envBool("CPUBARS_LOG_JSON", false),
		ReportMode:       ReportMode(strings.ToLower(env("CPUBARS_REPORT_MODE", ""))),
		ReportGRPCAddr:   env("CPUBARS_REPORT_GRPC_ADDR", "127.0.0.1:3001"),
		ReportGRPCMethod: env("CPUBARS_REPORT_GRPC_METHOD", "/cpubars.v1.ReportService/ReportUtilization"),
		ReportWSURL:      env("CPUBARS_REPORT_WS_URL", "ws://127.0.0.1:3001/ws/cpubars"),
		ReportToken:      env("CPUBARS_REPORT_TOKEN", ""),
		ReportTimeout:    envDuration("CPUBARS_REPORT_TIMEOUT", 3*time.Second),
		TLSEnabled:       envBool("CPUBARS_TLS_ENABLED", false),
		TLSSkipVerify:    envBool("CPUBARS_TLS_SKIP_VERIFY", false),
		TLSCAPath:        env("CPUBARS_TLS_CA_PATH", ""),
		TLSCertPath:      env("CPUBARS_TLS_CERT_PATH", ""),
		TLSKeyPath:       env("CPUBARS_TLS_KEY_PATH", ""),
	}
}

func (c *Config) applyFlags(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("cpubars", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}

	delayMillis := fs.Int("delay", int(c.Delay/time.Millisecond), "delay between the two samples in milliseconds")
	fs.StringVar(&c.StatPath, "stat", c.StatPath, "path of the cpu counter file")
	fs.BoolVar(&c.ANSI, "ansi", c.ANSI, "color the bars with ANSI escape sequences")
	fs.BoolVar(&c.Tmux, "tmux", c.Tmux, "color the bars with tmux style directives")
	fs.StringVar(&c.Color, "color", c.Color, "color mode by name: none, ansi or tmux")
	fs.Float64Var(&c.GreenUntil, "green", c.GreenUntil, "summed load below which the bars are green")
	fs.Float64Var(&c.YellowUntil, "yellow", c.YellowUntil, "summed load below which the bars are yellow")
	fs.StringVar(&c.Palette, "palette", c.Palette, "bar glyphs, lowest load first")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	reportMode := fs.String("report", string(c.ReportMode), "send the result to a backend: grpc or websocket")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	c.Delay = time.Duration(*delayMillis) * time.Millisecond
	c.ReportMode = ReportMode(strings.ToLower(strings.TrimSpace(*reportMode)))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// Validate checks the configuration and resolves ColorMode. Conflicting
// color modes are reported here, before any sampling takes place.
func (c *Config) Validate() error {
	if c.Delay <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidDelay, c.Delay)
	}
	if strings.TrimSpace(c.StatPath) == "" {
		return errors.New("CPUBARS_STAT_PATH must not be empty")
	}
	mode, err := c.resolveColorMode()
	if err != nil {
		return err
	}
	c.ColorMode = mode
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if _, err := render.NewPalette(c.Palette); err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	switch c.ReportMode {
	case ReportModeOff:
	case ReportModeGRPC:
		if c.ReportGRPCAddr == "" {
			return errors.New("CPUBARS_REPORT_GRPC_ADDR is required for grpc reports")
		}
		if strings.TrimSpace(c.ReportGRPCMethod) == "" {
			return errors.New("CPUBARS_REPORT_GRPC_METHOD is required for grpc reports")
		}
	case ReportModeWebSocket:
		if c.ReportWSURL == "" {
			return errors.New("CPUBARS_REPORT_WS_URL is required for websocket reports")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownReportMode, c.ReportMode)
	}
	if c.ReportMode != ReportModeOff && c.ReportTimeout <= 0 {
		return errors.New("CPUBARS_REPORT_TIMEOUT must be > 0")
	}
	return nil
}

// resolveColorMode combines the -ansi/-tmux toggles with the named -color
// setting. A named mode that disagrees with a set toggle is a conflict.
func (c Config) resolveColorMode() (render.ColorMode, error) {
	mode, err := render.ResolveColorMode(c.ANSI, c.Tmux)
	if err != nil {
		return render.ColorNone, err
	}
	if strings.TrimSpace(c.Color) == "" {
		return mode, nil
	}
	named, err := render.ParseColorMode(c.Color)
	if err != nil {
		return render.ColorNone, err
	}
	if mode != render.ColorNone && named != mode {
		return render.ColorNone, fmt.Errorf("%w: color %s with %s toggle", render.ErrConflictingColorModes, named, mode)
	}
	return named, nil
}

func (c Config) Thresholds() render.Thresholds {
	return render.Thresholds{GreenUntil: c.GreenUntil, YellowUntil: c.YellowUntil}
}

// TLSConfig builds client credentials for the report sinks. It returns nil
// when TLS is off so callers fall back to plaintext.
func (c Config) TLSConfig() (*tls.Config, error) {
	if !c.TLSEnabled {
		return nil, nil
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: c.TLSSkipVerify}

	if c.TLSCAPath != "" {
		pool, err := loadCertPool(c.TLSCAPath)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = pool
	}

	switch {
	case c.TLSCertPath == "" && c.TLSKeyPath == "":
	case c.TLSCertPath == "" || c.TLSKeyPath == "":
		return nil, errors.New("CPUBARS_TLS_CERT_PATH and CPUBARS_TLS_KEY_PATH must be set together")
	default:
		crt, err := tls.LoadX509KeyPair(c.TLSCertPath, c.TLSKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{crt}
	}
	return tlsCfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ca bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca bundle %s holds no PEM certificates", path)
	}
	return pool, nil
}

// lookupEnv returns the trimmed value of key; ok is false when it is blank.
func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func env(key, fallback string) string {
	if v, ok := lookupEnv(key); ok {
		return v
	}
	return fallback
}

// envRaw keeps surrounding whitespace, which matters for glyph palettes.
func envRaw(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envParsed returns fallback when key is blank or its value does not parse.
func envParsed[T any](key string, fallback T, parse func(string) (T, error)) T {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	return envParsed(key, fallback, strconv.Atoi)
}

func envFloat(key string, fallback float64) float64 {
	return envParsed(key, fallback, func(v string) (float64, error) {
		return strconv.ParseFloat(v, 64)
	})
}

func envBool(key string, fallback bool) bool {
	return envParsed(key, fallback, parseBool)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	return envParsed(key, fallback, time.ParseDuration)
}

var errNotBool = errors.New("not a boolean")

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, errNotBool
	}
}
