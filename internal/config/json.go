package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/epavlov/todolite/internal/flagx"
	"github.com/epavlov/todolite/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	APIKey                 string         `json:"api_key"`
	AuthEndpoint           string         `json:"auth_endpoint"`
	TokenEndpoint          string         `json:"token_endpoint"`
	OAuthClientID          string         `json:"oauth_client_id"`
	OAuthClientSecret      string         `json:"oauth_client_secret"`
	OAuthListenAddr        string         `json:"oauth_listen_addr"`
	RecaptchaSiteKey       string         `json:"recaptcha_site_key"`
	RecaptchaSecret        string         `json:"recaptcha_secret"`
	RecaptchaEndpoint      string         `json:"recaptcha_endpoint"`
	DatabaseDSN            string         `json:"database_dsn"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	S3AccessKey            string         `json:"s3_access_key"`
	S3SecretKey            string         `json:"s3_secret_key"`
	CacheDBPath            string         `json:"cache_db_path"`
	SessionRefreshInterval timex.Duration `json:"session_refresh_interval"`
}

// parseJson overlays cfg with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags (flagx.JsonConfigFlags);
// when absent, no JSON is loaded. Only fields present in the file override
// the current values. Read or unmarshal errors panic; the intended usage is
// defaults -> parseJson -> parseFlags, where later stages win.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIfNotEmpty := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setIfNotEmpty(&cfg.APIKey, jc.APIKey)
	setIfNotEmpty(&cfg.AuthEndpoint, jc.AuthEndpoint)
	setIfNotEmpty(&cfg.TokenEndpoint, jc.TokenEndpoint)
	setIfNotEmpty(&cfg.OAuthClientID, jc.OAuthClientID)
	setIfNotEmpty(&cfg.OAuthClientSecret, jc.OAuthClientSecret)
	setIfNotEmpty(&cfg.OAuthListenAddr, jc.OAuthListenAddr)
	setIfNotEmpty(&cfg.RecaptchaSiteKey, jc.RecaptchaSiteKey)
	setIfNotEmpty(&cfg.RecaptchaSecret, jc.RecaptchaSecret)
	setIfNotEmpty(&cfg.RecaptchaEndpoint, jc.RecaptchaEndpoint)
	setIfNotEmpty(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIfNotEmpty(&cfg.S3Bucket, jc.S3Bucket)
	setIfNotEmpty(&cfg.S3Region, jc.S3Region)
	setIfNotEmpty(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setIfNotEmpty(&cfg.S3AccessKey, jc.S3AccessKey)
	setIfNotEmpty(&cfg.S3SecretKey, jc.S3SecretKey)
	setIfNotEmpty(&cfg.CacheDBPath, jc.CacheDBPath)
	if jc.SessionRefreshInterval.Duration != 0 {
		cfg.SessionRefreshInterval = time.Duration(jc.SessionRefreshInterval.Duration)
	}
}
