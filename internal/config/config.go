package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Data     DataConfig
	SCB      SCBConfig
	JobAds   JobAdsConfig
	Enrich   EnrichConfig
	ESCO     ESCOConfig
	Database DatabaseConfig
	Redis    RedisConfig
	GCS      GCSConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DataConfig struct {
	// DataDir holds the processed parquet tables; RawDir holds cached downloads.
	DataDir string
	RawDir  string
}

type SCBConfig struct {
	BaseURL         string
	IncomeTable     string
	DispersionTable string
	AgeTable        string
	EducationTable  string
	APIKey          string
	MinInterval     time.Duration
	Timeout         time.Duration
}

type JobAdsConfig struct {
	HistoricalBaseURL string
	TaxonomyBaseURL   string
	MinInterval       time.Duration
	Timeout           time.Duration
}

type EnrichConfig struct {
	BaseURL     string
	BatchSize   int
	MinInterval time.Duration
	Timeout     time.Duration
	Threshold   float64
	MinTextLen  int
	MaxTextLen  int
}

type ESCOConfig struct {
	CrosswalkURL string
	RelationType string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// Enabled reports whether a warehouse connection is configured.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.DBHost) != "" && strings.TrimSpace(c.DBName) != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type GCSConfig struct {
	Upload bool
	Bucket string
	Prefix string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "arbetsdata"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8080"),
	}

	cfg.Data = DataConfig{
		DataDir: opt("DATA_DIR", "data/processed"),
		RawDir:  opt("RAW_DIR", "data/raw"),
	}

	cfg.SCB = SCBConfig{
		BaseURL:         opt("SCB_BASE_URL", "https://api.scb.se/OV0104/v1/doris/en/ssd"),
		IncomeTable:     opt("SCB_INCOME_TABLE", "/AM/AM0110/AM0110A/LonYrkeRegion4AN"),
		DispersionTable: opt("SCB_DISPERSION_TABLE", "/AM/AM0110/AM0110A/LonSpridYrke4AN"),
		AgeTable:        opt("SCB_AGE_TABLE", "/AM/AM0110/AM0110A/LonYrkeAlder4AN"),
		EducationTable:  opt("SCB_EDUCATION_TABLE", "/AM/AM0110/AM0110A/LonYrkeUtb4AN"),
		APIKey:          opt("SCB_API_KEY", ""),
		MinInterval:     optDuration("SCB_MIN_INTERVAL", 350*time.Millisecond),
		Timeout:         optDuration("SCB_TIMEOUT", 60*time.Second),
	}

	cfg.JobAds = JobAdsConfig{
		HistoricalBaseURL: opt("JOBADS_BASE_URL", "https://historical.api.jobtechdev.se"),
		TaxonomyBaseURL:   opt("TAXONOMY_BASE_URL", "https://taxonomy.api.jobtechdev.se/v1/taxonomy"),
		MinInterval:       optDuration("JOBADS_MIN_INTERVAL", 500*time.Millisecond),
		Timeout:           optDuration("JOBADS_TIMEOUT", 300*time.Second),
	}

	cfg.Enrich = EnrichConfig{
		BaseURL:     opt("ENRICH_BASE_URL", "https://jobad-enrichments-api.jobtechdev.se"),
		BatchSize:   optInt("ENRICH_BATCH_SIZE", 10),
		MinInterval: optDuration("ENRICH_MIN_INTERVAL", 500*time.Millisecond),
		Timeout:     optDuration("ENRICH_TIMEOUT", 60*time.Second),
		Threshold:   optFloat("ENRICH_THRESHOLD", 0.5),
		MinTextLen:  optInt("ENRICH_MIN_TEXT_LEN", 50),
		MaxTextLen:  optInt("ENRICH_MAX_TEXT_LEN", 10000),
	}

	cfg.ESCO = ESCOConfig{
		CrosswalkURL: opt("ESCO_CROSSWALK_URL",
			"https://www.scb.se/contentassets/0c0089cc085a45d49c1dc83923ad933a/webb_nyckel_ssyk2012_isco-08_20160905.xlsx"),
		RelationType: opt("ESCO_RELATION_TYPE", "essential"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST", ""),
		DBPort:     opt("DB_PORT", "5432"),
		DBName:     opt("DB_NAME", ""),
		DBUser:     opt("DB_USER", ""),
		DBPassword: opt("DB_PASSWORD", ""),
		DBSSLMode:  opt("DB_SSL_MODE", "disable"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", ""),
		Port:     opt("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD", ""),
	}

	cfg.GCS = GCSConfig{
		Upload: optBool("GCS_UPLOAD", false),
		Prefix: opt("GCS_PREFIX", "processed"),
	}
	if cfg.GCS.Upload {
		cfg.GCS.Bucket = req("GCS_BUCKET")
	} else {
		cfg.GCS.Bucket = opt("GCS_BUCKET", "")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func optFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
