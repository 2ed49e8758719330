package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		env  string
		val  string
		dir  func() (string, error)
		want string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", "langpatch")},
		{"cache xdg", "XDG_CACHE_HOME", "/tmp/xc", cacheDir, "/tmp/xc/langpatch"},
		{"config default", "XDG_CONFIG_HOME", "", configDir, filepath.Join(home, ".config", "langpatch")},
		{"config xdg", "XDG_CONFIG_HOME", "/tmp/xg", configDir, "/tmp/xg/langpatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			got, err := tt.dir()
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xg")
	path, err := defaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := "/tmp/xg/langpatch/config.toml"; path != want {
		t.Errorf("defaultConfigPath() = %q, want %q", path, want)
	}
}
