package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env and then .env.<APP_ENV> (overriding) into the process
// environment. Missing files are not an error; CI passes plain variables.
// It returns the files that were actually loaded.
func Load(dir string) ([]string, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	var loaded []string

	base := join(dir, ".env")
	if exists(base) {
		if err := godotenv.Load(base); err != nil {
			return loaded, fmt.Errorf("load %s: %w", base, err)
		}
		loaded = append(loaded, base)
	}

	overlay := join(dir, fmt.Sprintf(".env.%s", appEnv))
	if exists(overlay) {
		if err := godotenv.Overload(overlay); err != nil {
			return loaded, fmt.Errorf("load %s: %w", overlay, err)
		}
		loaded = append(loaded, overlay)
	}

	return loaded, nil
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
