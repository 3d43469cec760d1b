package initializers

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvVariables reads an optional .env file into the process
// environment. A missing file is not an error; deployments that inject
// variables directly run without one.
func LoadEnvVariables() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
