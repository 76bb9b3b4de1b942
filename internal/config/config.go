package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Log       LogConfig
	Dataset   DatasetConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Solver    SolverConfig
	Scheduler SchedulerConfig
	Export    ExportConfig
	Store     string
}

type LogConfig struct {
	Level  string
	Format string
}

// DatasetConfig selects where the dataset is read from and uploaded to
type DatasetConfig struct {
	Source   string
	Path     string
	CSVDir   string
	RedisKey string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SolverConfig struct {
	Name       string
	Workers    int
	Seed       uint64
	ConfigPath string
}

type SchedulerConfig struct {
	Strategy          string
	TimeLimitSeconds  int
	ConcurrencyPolicy string
	FacultyPolicy     string
}

type ExportConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError // Explicit config files surface as path errors when absent
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dataset = DatasetConfig{
		Source:   strings.ToLower(v.GetString("DATASET_SOURCE")),
		Path:     v.GetString("DATASET_PATH"),
		CSVDir:   v.GetString("DATASET_CSV_DIR"),
		RedisKey: v.GetString("DATASET_REDIS_KEY"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Solver = SolverConfig{
		Name:       strings.ToLower(v.GetString("SOLVER")),
		Workers:    v.GetInt("SOLVER_WORKERS"),
		Seed:       v.GetUint64("SOLVER_SEED"),
		ConfigPath: v.GetString("SOLVER_CONFIG_PATH"),
	}

	cfg.Scheduler = SchedulerConfig{
		Strategy:          strings.ToLower(v.GetString("STRATEGY")),
		TimeLimitSeconds:  v.GetInt("TIME_LIMIT_SECONDS"),
		ConcurrencyPolicy: strings.ToLower(v.GetString("CONCURRENCY_POLICY")),
		FacultyPolicy:     strings.ToLower(v.GetString("FACULTY_POLICY")),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}
	cfg.Store = strings.ToLower(v.GetString("STORE"))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DATASET_SOURCE", "file")
	v.SetDefault("DATASET_PATH", "data.json")
	v.SetDefault("DATASET_CSV_DIR", "data")
	v.SetDefault("DATASET_REDIS_KEY", "timetable:dataset")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SOLVER", "portfolio")
	v.SetDefault("SOLVER_WORKERS", 8)
	v.SetDefault("SOLVER_SEED", 0)
	v.SetDefault("SOLVER_CONFIG_PATH", "config.json")

	v.SetDefault("STRATEGY", "pure")
	v.SetDefault("TIME_LIMIT_SECONDS", 30)
	v.SetDefault("CONCURRENCY_POLICY", "queue")
	v.SetDefault("FACULTY_POLICY", "first")

	v.SetDefault("EXPORT_DIR", "exports")
	v.SetDefault("STORE", "memory")
}
