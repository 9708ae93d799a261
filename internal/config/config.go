package config

import (
	"fmt"

	"github.com/BarkinBalci/envconfig"
)

// Service holds API-facing service configuration
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
	AdminKey    string `envconfig:"SERVICE_ADMIN_KEY" required:"true"`
}

// SQS holds queue transport configuration
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// ClickHouse holds append-only store configuration
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
	RetentionDays   int    `envconfig:"CLICKHOUSE_EVENT_RETENTION_DAYS" default:"730"`
}

// Postgres holds model registry storage configuration
type Postgres struct {
	DSN          string `envconfig:"POSTGRES_DSN" required:"true"`
	MaxOpenConns int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"2"`
}

// Redis holds feature cache configuration
type Redis struct {
	URL           string `envconfig:"REDIS_URL" required:"true"`
	FeatureTTLSec int    `envconfig:"REDIS_FEATURE_TTL_SEC" default:"3600"`
	CacheDisabled bool   `envconfig:"REDIS_CACHE_DISABLED" default:"false"`
}

// Consumer holds ingestion consumer configuration
type Consumer struct {
	BatchSizeMin    int    `envconfig:"CONSUMER_BATCH_SIZE_MIN" default:"100"`
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Scoring holds predictor training and promotion configuration
type Scoring struct {
	CLVHorizonDays     int     `envconfig:"SCORING_CLV_HORIZON_DAYS" default:"365"`
	ChurnInactiveDays  int     `envconfig:"SCORING_CHURN_INACTIVE_DAYS" default:"60"`
	LeadWindowDays     int     `envconfig:"SCORING_LEAD_WINDOW_DAYS" default:"30"`
	MinCLVR2           float64 `envconfig:"SCORING_MIN_CLV_R2" default:"0.5"`
	MinChurnAUC        float64 `envconfig:"SCORING_MIN_CHURN_AUC" default:"0.75"`
	MinLeadAUC         float64 `envconfig:"SCORING_MIN_LEAD_AUC" default:"0.70"`
	TreeCount          int     `envconfig:"SCORING_TREE_COUNT" default:"100"`
	MaxTreeDepth       int     `envconfig:"SCORING_MAX_TREE_DEPTH" default:"8"`
	RetrainCron        string  `envconfig:"SCORING_RETRAIN_CRON" default:"0 3 * * *"`
	RetrainCronEnabled bool    `envconfig:"SCORING_RETRAIN_CRON_ENABLED" default:"false"`
}

// Attribution holds multi-touch attribution configuration
type Attribution struct {
	HalfLifeDays  float64 `envconfig:"ATTRIBUTION_HALF_LIFE_DAYS" default:"7"`
	MinPaths      int     `envconfig:"ATTRIBUTION_MIN_PATHS" default:"200"`
	ShapleySample int     `envconfig:"ATTRIBUTION_SHAPLEY_SAMPLE" default:"500"`
}

// Anomaly holds metric anomaly detection configuration
type Anomaly struct {
	WindowSize int     `envconfig:"ANOMALY_WINDOW_SIZE" default:"30"`
	MinPoints  int     `envconfig:"ANOMALY_MIN_POINTS" default:"7"`
	Sigma      float64 `envconfig:"ANOMALY_SIGMA" default:"3"`
}

// Config is the root configuration for both binaries
type Config struct {
	Service     Service
	SQS         SQS
	ClickHouse  ClickHouse
	Postgres    Postgres
	Redis       Redis
	Consumer    Consumer
	Scoring     Scoring
	Attribution Attribution
	Anomaly     Anomaly
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
