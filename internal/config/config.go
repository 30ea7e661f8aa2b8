package config

import "os"

// Config is read once at startup. Every value has a fallback default
// mirroring the observed deployments; secrets left on their default are
// reported through DefaultedSecrets so startup can warn about them.
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AdminToken string
	StageDir   string
	AppEnv     string

	DefaultedSecrets []string
}

const (
	defaultMongoURI   = "mongodb://localhost:27017"
	defaultMinioAK    = "minioadmin"
	defaultMinioSK    = "minioadmin"
	defaultAdminToken = "Admin_Access_Token_Placeholder"
)

func FromEnv() *Config {
	cfg := &Config{
		Port:           getenv("PORT", "5001"),
		MongoURI:       getenv("MONGO_URI", defaultMongoURI),
		MongoDB:        getenv("MONGO_DB", "KMV_Gallery_DB"),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", defaultMinioAK),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", defaultMinioSK),
		MinioBucket:    getenv("MINIO_BUCKET", "kmv-gallery"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		AdminToken:     getenv("ADMIN_TOKEN", defaultAdminToken),
		StageDir:       getenv("STAGE_DIR", "uploads"),
		AppEnv:         getenv("APP_ENV", "development"),
	}

	if cfg.AdminToken == defaultAdminToken {
		cfg.DefaultedSecrets = append(cfg.DefaultedSecrets, "ADMIN_TOKEN")
	}
	if cfg.MinioAccessKey == defaultMinioAK && cfg.MinioSecretKey == defaultMinioSK {
		cfg.DefaultedSecrets = append(cfg.DefaultedSecrets, "MINIO_ACCESS_KEY/MINIO_SECRET_KEY")
	}
	if cfg.MongoURI == defaultMongoURI {
		cfg.DefaultedSecrets = append(cfg.DefaultedSecrets, "MONGO_URI")
	}

	return cfg
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
