package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pipeline"
)

// configFileName is the name of the config file inside the config directory.
const configFileName = "config.toml"

// Config holds user defaults read from ~/.config/seamline/config.toml.
// Flags given on the command line always win over the file.
//
//	seed = 7
//	formats = ["svg", "png"]
//	margin = 4.0
//	scale = 6.0
//	cache_dir = "/var/cache/seamline"
//
//	[server]
//	addr = ":9090"
//	store_dir = "/srv/patterns"
//	redis_url = "redis://localhost:6379/0"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "seamline"
type Config struct {
	Seed     uint64       `toml:"seed"`
	Formats  []string     `toml:"formats"`
	Margin   float64      `toml:"margin"`
	Scale    float64      `toml:"scale"`
	CacheDir string       `toml:"cache_dir"`
	Server   ServerConfig `toml:"server"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	StoreDir      string `toml:"store_dir"`
	RedisURL      string `toml:"redis_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Seed:    pipeline.DefaultSeed,
		Formats: []string{pipeline.FormatSVG},
		Margin:  pipeline.DefaultMargin,
		Scale:   pipeline.DefaultScale,
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// loadConfig reads the config file at path on top of the defaults. A missing
// file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := pipeline.ValidateFormats(cfg.Formats); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// configPath returns the config file path using XDG standard (~/.config/seamline/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}
