// Package config carga la configuración de linklab con viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
)

// EnvPrefix es el prefijo de las variables de entorno, p. ej.
// LINKLAB_RECEIVER_LISTEN.
const EnvPrefix = "LINKLAB"

// Config es la configuración completa.
type Config struct {
	Log      log.Config     `mapstructure:"log" yaml:"log"`
	Receiver ReceiverConfig `mapstructure:"receiver" yaml:"receiver"`
	Emitter  EmitterConfig  `mapstructure:"emitter" yaml:"emitter"`
	Bench    BenchConfig    `mapstructure:"bench" yaml:"bench"`
}

// ReceiverConfig configura el receptor WebSocket.
type ReceiverConfig struct {
	Listen          string        `mapstructure:"listen" yaml:"listen"`
	Path            string        `mapstructure:"path" yaml:"path"`
	MetricsPath     string        `mapstructure:"metrics_path" yaml:"metrics_path"`
	RecentLimit     int           `mapstructure:"recent_limit" yaml:"recent_limit"`
	MaxFrameBytes   int64         `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`
	PingInterval    time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout" yaml:"pong_timeout"`
	StatsInterval   time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// EmitterConfig configura el emisor y su cliente WebSocket.
type EmitterConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	Algorithm    string        `mapstructure:"algorithm" yaml:"algorithm"`
	BER          float64       `mapstructure:"ber" yaml:"ber"`
	Seed         int64         `mapstructure:"seed" yaml:"seed"` // 0 = por tiempo
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ReplyTimeout time.Duration `mapstructure:"reply_timeout" yaml:"reply_timeout"`
	WaitReply    bool          `mapstructure:"wait_reply" yaml:"wait_reply"`
}

// BenchConfig configura el benchmark local.
type BenchConfig struct {
	Tests      int       `mapstructure:"tests" yaml:"tests"`
	Lengths    []int     `mapstructure:"lengths" yaml:"lengths"`
	BER        []float64 `mapstructure:"ber" yaml:"ber"`
	Algorithms []string  `mapstructure:"algorithms" yaml:"algorithms"`
	Seed       int64     `mapstructure:"seed" yaml:"seed"`
	Workers    int       `mapstructure:"workers" yaml:"workers"`
	Output     string    `mapstructure:"output" yaml:"output"`
}

// Load lee el archivo de configuración en path (opcional si está vacío),
// aplica los valores por defecto y las variables LINKLAB_* y valida.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return decode(v)
}

// Default devuelve sólo los valores por defecto, sin archivo ni entorno.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "linklab.log")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("receiver.listen", "localhost:9000")
	v.SetDefault("receiver.path", "/")
	v.SetDefault("receiver.metrics_path", "/metrics")
	v.SetDefault("receiver.recent_limit", 100)
	v.SetDefault("receiver.max_frame_bytes", 1<<20)
	v.SetDefault("receiver.ping_interval", "30s")
	v.SetDefault("receiver.pong_timeout", "10s")
	v.SetDefault("receiver.stats_interval", "30s")
	v.SetDefault("receiver.shutdown_timeout", "5s")

	v.SetDefault("emitter.url", "ws://localhost:9000/")
	v.SetDefault("emitter.algorithm", "crc")
	v.SetDefault("emitter.ber", 0.01)
	v.SetDefault("emitter.seed", 0)
	v.SetDefault("emitter.write_timeout", "5s")
	v.SetDefault("emitter.reply_timeout", "5s")
	v.SetDefault("emitter.wait_reply", true)

	v.SetDefault("bench.tests", 10000)
	v.SetDefault("bench.lengths", []int{5, 10, 20, 50})
	v.SetDefault("bench.ber", []float64{0.0, 0.0001, 0.0005, 0.001, 0.002, 0.005})
	v.SetDefault("bench.algorithms", []string{"crc", "hamming"})
	v.SetDefault("bench.seed", 42)
	v.SetDefault("bench.workers", 4)
	v.SetDefault("bench.output", "benchmark_results.csv")
}

// Validate revisa los rangos de los valores.
func (c *Config) Validate() error {
	if c.Receiver.Listen == "" {
		return fmt.Errorf("receiver.listen must not be empty")
	}
	if !strings.HasPrefix(c.Receiver.Path, "/") {
		return fmt.Errorf("receiver.path must start with '/': %q", c.Receiver.Path)
	}
	if c.Receiver.RecentLimit <= 0 {
		return fmt.Errorf("receiver.recent_limit must be positive: %d", c.Receiver.RecentLimit)
	}
	if c.Emitter.BER < 0 || c.Emitter.BER > 1 {
		return fmt.Errorf("emitter.ber must be between 0.0 and 1.0: %.4f", c.Emitter.BER)
	}
	if c.Emitter.Algorithm != "crc" && c.Emitter.Algorithm != "hamming" {
		return fmt.Errorf("emitter.algorithm: unsupported algorithm %q", c.Emitter.Algorithm)
	}
	if c.Bench.Tests <= 0 {
		return fmt.Errorf("bench.tests must be positive: %d", c.Bench.Tests)
	}
	if c.Bench.Workers <= 0 {
		return fmt.Errorf("bench.workers must be positive: %d", c.Bench.Workers)
	}
	for _, ber := range c.Bench.BER {
		if ber < 0 || ber > 1 {
			return fmt.Errorf("bench.ber values must be between 0.0 and 1.0: %.4f", ber)
		}
	}
	for _, l := range c.Bench.Lengths {
		if l <= 0 {
			return fmt.Errorf("bench.lengths must be positive: %d", l)
		}
	}
	for _, a := range c.Bench.Algorithms {
		if a != "crc" && a != "hamming" {
			return fmt.Errorf("bench.algorithms: unsupported algorithm %q", a)
		}
	}
	return nil
}

// Dump devuelve la configuración efectiva en YAML.
func Dump(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}
