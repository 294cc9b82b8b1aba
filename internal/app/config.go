package app

import (
	"time"

	"github.com/skillforge/skillforge-backend/internal/platform/envutil"
)

type Config struct {
	Addr            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// StorageMode selects where rendered certificates land: "gcs" or "local".
	StorageMode     string
	LocalStorageDir string
	LocalStorageURL string

	ServiceName string
	Environment string
	Version     string
}

func LoadConfig() Config {
	return Config{
		Addr:            envutil.String("HTTP_ADDR", ":8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		StorageMode:     envutil.String("STORAGE_MODE", "local"),
		LocalStorageDir: envutil.String("LOCAL_STORAGE_DIR", "./data/objects"),
		LocalStorageURL: envutil.String("LOCAL_STORAGE_URL", ""),
		ServiceName:     envutil.String("SERVICE_NAME", "skillforge"),
		Environment:     envutil.String("ENVIRONMENT", "development"),
		Version:         envutil.String("SERVICE_VERSION", "dev"),
	}
}
