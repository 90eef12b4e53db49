package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FileConfig is the YAML configuration file. Unset fields leave the
// environment-derived value alone.
type FileConfig struct {
	Environment          string            `yaml:"environment,omitempty"`
	LogLevel             string            `yaml:"log_level,omitempty"`
	HTTPTimeout          string            `yaml:"http_timeout,omitempty"`
	MaxConcurrentLookups *int              `yaml:"max_concurrent_lookups,omitempty"`
	Kakao                KakaoFileConfig   `yaml:"kakao,omitempty"`
	Stations             StationFileConfig `yaml:"stations,omitempty"`
	Cache                *CacheFileConfig  `yaml:"cache,omitempty"`
	RegionAliases        map[string]string `yaml:"region_aliases,omitempty"`
}

type KakaoFileConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
}

type StationFileConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

type CacheFileConfig struct {
	Size       *int  `yaml:"size,omitempty"`
	TTLMinutes *int  `yaml:"ttl_minutes,omitempty"`
	Enabled    *bool `yaml:"enabled,omitempty"`
}

// ParseFile decodes a YAML configuration document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if fc.HTTPTimeout != "" {
		if _, err := time.ParseDuration(fc.HTTPTimeout); err != nil {
			return nil, fmt.Errorf("invalid http_timeout %q: %w", fc.HTTPTimeout, err)
		}
	}
	return &fc, nil
}

// LoadFile reads a configuration file from disk, or from S3 when path has the
// form s3://bucket/key. s3Client may be nil for local paths.
func LoadFile(ctx context.Context, path string, s3Client S3Client) (*FileConfig, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(path, "s3://") {
		data, err = readS3Object(ctx, s3Client, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Loaded config file")
	return ParseFile(data)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func readS3Object(ctx context.Context, s3Client S3Client, location string) ([]byte, error) {
	if s3Client == nil {
		return nil, fmt.Errorf("no S3 client for %s", location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid S3 location %q", location)
	}

	result, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	return io.ReadAll(result.Body)
}

// Options converts the file settings into config options.
func (f *FileConfig) Options() []Option {
	var opts []Option
	if f.Environment != "" {
		opts = append(opts, WithEnvironment(f.Environment))
	}
	if f.LogLevel != "" {
		opts = append(opts, WithLogLevel(f.LogLevel))
	}
	if f.HTTPTimeout != "" {
		if d, err := time.ParseDuration(f.HTTPTimeout); err == nil {
			opts = append(opts, WithHTTPTimeout(d))
		}
	}
	if f.MaxConcurrentLookups != nil {
		opts = append(opts, WithMaxConcurrentLookups(*f.MaxConcurrentLookups))
	}
	opts = append(opts,
		WithKakao(f.Kakao.BaseURL, f.Kakao.APIKey),
		WithStationsBaseURL(f.Stations.BaseURL),
		WithRegionAliases(f.RegionAliases),
	)
	if f.Cache != nil {
		opts = append(opts, f.Cache.option())
	}
	return opts
}

func (f *CacheFileConfig) option() Option {
	return func(c *Config) {
		cacheConfig := DefaultCacheConfig()
		if c.Cache != nil {
			copied := *c.Cache
			cacheConfig = &copied
		}
		if f.Size != nil {
			cacheConfig.StationLRUSize = *f.Size
		}
		if f.TTLMinutes != nil {
			cacheConfig.StationLRUTTLMinutes = *f.TTLMinutes
		}
		if f.Enabled != nil {
			cacheConfig.EnableStationCache = *f.Enabled
		}
		c.Cache = cacheConfig
	}
}

// Load builds the configuration from the environment, then applies the file
// at path when one is given, then extra. Later sources win.
func Load(ctx context.Context, path string, extra ...Option) (*Config, error) {
	if path == "" {
		return LoadFromEnv(extra...), nil
	}

	var s3Client S3Client
	if strings.HasPrefix(path, "s3://") {
		c, err := NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		s3Client = c
	}

	fc, err := LoadFile(ctx, path, s3Client)
	if err != nil {
		return nil, err
	}
	return LoadFromEnv(append(fc.Options(), extra...)...), nil
}
