package utils

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads .env from the working directory and, when running inside the
// source tree, from the project root. Variables already set in the process
// environment win. Missing files are not an error.
func LoadEnv() error {
	var candidates []string
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ".env"))
	}
	if root, err := FindProjectRoot(); err == nil {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	seen := make(map[string]bool)
	for _, envPath := range candidates {
		if seen[envPath] {
			continue
		}
		seen[envPath] = true
		if err := godotenv.Load(envPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
