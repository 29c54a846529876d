package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// AppEnvKey selects the environment-specific dotenv files.
const AppEnvKey = "STOREFRONT_APP_ENV"

// Files lists the dotenv files Load considers, most specific first:
// .env.<env>.local, .env.<env>, then .env.
func Files(appEnv string) []string {
	appEnv = strings.ToLower(strings.TrimSpace(appEnv))
	if appEnv == "" {
		return []string{".env"}
	}
	return []string{".env." + appEnv + ".local", ".env." + appEnv, ".env"}
}

// Load reads the dotenv files under dir that exist. Variables already in the
// process environment are never overridden, so the first file to set a key
// wins. It returns the paths it read; an empty result is not an error.
func Load(dir string) ([]string, error) {
	var loaded []string
	for _, name := range Files(os.Getenv(AppEnvKey)) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
