// Package config loads typed configuration from environment variables and
// optional .env files.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//   - Load parses the environment into any struct using env tags, nested
//     structs included through envPrefix.
//   - Each configuration type is parsed once and cached for the lifetime of
//     the process; MustLoad panics instead of returning an error.
//
// # Usage
//
//	type ServiceConfig struct {
//		Addr   string          `env:"HTTP_ADDR" envDefault:":8080"`
//		Upload upload.Config   `envPrefix:"UPLOAD_"`
//		S3     upload.S3Config `envPrefix:"S3_"`
//	}
//
//	import "github.com/dmitrymomot/uploadkit/pkg/config"
//
//	func main() {
//		var cfg ServiceConfig
//		config.MustLoad(&cfg)
//	}
//
// With UPLOAD_PATH=/var/uploads and UPLOAD_EXT_WHITELIST=jpg,png in the
// environment, cfg.Upload.Path and cfg.Upload.ExtWhitelist are populated and
// every other upload option keeps its envDefault.
//
// # Caching
//
// The cache is keyed by the struct's type name and guarded by a sync.Once per
// type, so concurrent first loads parse only once. A failed parse is not
// cached. Use ResetCache in tests after changing the environment.
//
// # Error Handling
//
//   - ErrParsingConfig: env vars could not be parsed into the struct
//   - ErrLoadingEnvFile: a .env file could not be read
//   - ErrConfigNotLoaded: the cache lost a value it was expected to hold
//   - ErrNilPointer: nil pointer passed to Load or MustLoad
package config
