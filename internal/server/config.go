package server

import (
	"crypto/tls"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultAddress     = "0.0.0.0:8080"
	defaultTimeout     = 30 * time.Second
	defaultDatasetPath = "surepl-commits.json"
	defaultAssetsDir   = "assets"
)

// Config represents dashboard server configuration.
type Config struct {
	Address string        `yaml:"address" env:"SERVER_ADDRESS"`
	Timeout time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT"`

	// DatasetPath is tried first; when the file does not exist the server
	// falls back to RemoteDatasetURL. This fallback order is the only one.
	DatasetPath      string `yaml:"dataset_path" env:"SERVER_DATASET_PATH"`
	RemoteDatasetURL string `yaml:"remote_dataset_url" env:"SERVER_REMOTE_DATASET_URL"`

	FetchAssets bool   `yaml:"fetch_assets" env:"SERVER_FETCH_ASSETS"`
	AssetsDir   string `yaml:"assets_dir" env:"SERVER_ASSETS_DIR"`

	CertFilePath string `yaml:"cert_file_path" env:"CERT_FILE_PATH"`
	KeyFilePath  string `yaml:"key_file_path" env:"KEY_FILE_PATH"`
	EnableHTTPS  bool   `yaml:"enable_https" env:"SERVER_ENABLE_HTTPS"`

	Certificate tls.Certificate `yaml:"-"`
}

func (cfg *Config) PrepareAndValidate() error {
	cfg.Address = lang.Check(cfg.Address, defaultAddress)
	cfg.Timeout = lang.Check(cfg.Timeout, defaultTimeout)
	cfg.DatasetPath = lang.Check(cfg.DatasetPath, defaultDatasetPath)
	cfg.AssetsDir = lang.Check(cfg.AssetsDir, defaultAssetsDir)

	if cfg.EnableHTTPS {
		if cfg.CertFilePath == "" || cfg.KeyFilePath == "" {
			return errm.New("cert_file_path and key_file_path must be set when enable_https is true")
		}

		cert, err := tls.LoadX509KeyPair(cfg.CertFilePath, cfg.KeyFilePath)
		if err != nil {
			return errm.Wrap(err, "failed to load certificate and key pair")
		}

		cfg.Certificate = cert
	}

	return nil
}
