package params

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing default file
// is not an error; an explicitly named file must exist.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}
