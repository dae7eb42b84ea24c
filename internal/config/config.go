package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Bot      BotConfig
	Worker   WorkerConfig
	Session  SessionConfig
	Files    FilesConfig
	FFmpeg   FFmpegConfig
	Redis    RedisConfig
	Postgres DBConfig
	Logger   Logger
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type BotConfig struct {
	Token   string
	AdminID int64
	Debug   bool
}

type WorkerConfig struct {
	// PoolSize caps parallel transcodes, QueueDepth caps the backlog
	// before Submit rejects with Overloaded.
	PoolSize    int
	QueueDepth  int
	JobDeadline time.Duration
	MaxCPUUsage float64
}

type SessionConfig struct {
	Timeout       time.Duration
	SweepInterval time.Duration
}

type FilesConfig struct {
	TempDir         string
	MaxVideoSize    int64
	MaxSubtitleSize int64
	SweepAge        time.Duration
}

type FFmpegConfig struct {
	Bin        string
	ProbeBin   string
	VideoCodec string
	AudioCodec string
	Preset     string
	CRF        int
}

type RedisConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	JobKeyPrefix  string
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Worker.PoolSize <= 0 {
		c.Worker.PoolSize = 2
	}
	if c.Worker.QueueDepth <= 0 {
		c.Worker.QueueDepth = 8
	}
	if c.Worker.JobDeadline <= 0 {
		c.Worker.JobDeadline = 30 * time.Minute
	}
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = 15 * time.Minute
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = time.Minute
	}
	if c.Files.TempDir == "" {
		c.Files.TempDir = filepath.Join(os.TempDir(), "transcodebot")
	}
	if c.Files.MaxVideoSize <= 0 {
		c.Files.MaxVideoSize = 2 << 30
	}
	if c.Files.MaxSubtitleSize <= 0 {
		c.Files.MaxSubtitleSize = 10 << 20
	}
	if c.Files.SweepAge <= 0 {
		c.Files.SweepAge = 6 * time.Hour
	}
	if c.FFmpeg.Bin == "" {
		c.FFmpeg.Bin = "ffmpeg"
	}
	if c.FFmpeg.ProbeBin == "" {
		c.FFmpeg.ProbeBin = "ffprobe"
	}
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = "libx264"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "fast"
	}
	if c.FFmpeg.CRF <= 0 {
		c.FFmpeg.CRF = 23
	}
	if c.Redis.JobKeyPrefix == "" {
		c.Redis.JobKeyPrefix = "job:status:"
	}
}
