package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name string
		env  string
		fn   func() (string, error)
		xdg  string
		want string
	}{
		{"CacheDefault", "XDG_CACHE_HOME", cacheDir, "", filepath.Join(home, ".cache", appName)},
		{"CacheXDG", "XDG_CACHE_HOME", cacheDir, "/tmp/xdg-cache", filepath.Join("/tmp/xdg-cache", appName)},
		{"DataDefault", "XDG_DATA_HOME", dataDir, "", filepath.Join(home, ".local", "share", appName, "patterns")},
		{"DataXDG", "XDG_DATA_HOME", dataDir, "/tmp/xdg-data", filepath.Join("/tmp/xdg-data", appName, "patterns")},
		{"ConfigDefault", "XDG_CONFIG_HOME", configPath, "", filepath.Join(home, ".config", appName, "config.toml")},
		{"ConfigXDG", "XDG_CONFIG_HOME", configPath, "/tmp/xdg-config", filepath.Join("/tmp/xdg-config", appName, "config.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.xdg)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLICacheDirOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	c := New(os.Stderr, LogInfo)
	if dir, _ := c.cacheDir(); dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("default cacheDir = %q", dir)
	}
	c.Config.CacheDir = "/srv/cache"
	if dir, _ := c.cacheDir(); dir != "/srv/cache" {
		t.Errorf("configured cacheDir = %q, want /srv/cache", dir)
	}
}
