package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// RequiredCredentials must be present for doctor to pass.
var RequiredCredentials = []string{
	"OPENAI_API_KEY",
	"CLAUDE_API_KEY",
}

// OptionalCredentials are reported when absent but never block a run.
var OptionalCredentials = []string{
	"ELEVENLABS_API_KEY",
	"TWITCH_CLIENT_ID",
	"TWITCH_CLIENT_SECRET",
	"EMAIL_ADDRESS",
	"EMAIL_PASSWORD",
	"EMAIL_IMAP_SERVER",
}

// Credentials is a snapshot of the named secrets taken once at start.
type Credentials struct {
	values map[string]string
	source string
}

// LoadCredentials reads the known credential names from the process
// environment, falling back to the dotenv file at path. Values already set in
// the environment win over the file. A missing file is not an error.
func LoadCredentials(path string) (Credentials, error) {
	fileValues := map[string]string{}
	source := ""
	if strings.TrimSpace(path) != "" {
		values, err := godotenv.Read(path)
		switch {
		case err == nil:
			fileValues = values
			source = path
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Credentials{}, fmt.Errorf("read env file %s: %w", path, err)
		}
	}

	creds := Credentials{values: make(map[string]string), source: source}
	for _, key := range append(append([]string{}, RequiredCredentials...), OptionalCredentials...) {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			creds.values[key] = strings.TrimSpace(value)
			continue
		}
		if value := strings.TrimSpace(fileValues[key]); value != "" {
			creds.values[key] = value
		}
	}
	return creds, nil
}

// StaticCredentials builds a snapshot from explicit values, bypassing the
// environment. Used by tests and embedding callers.
func StaticCredentials(values map[string]string) Credentials {
	creds := Credentials{values: make(map[string]string, len(values))}
	for key, value := range values {
		creds.values[key] = strings.TrimSpace(value)
	}
	return creds
}

// Get returns the credential value for key.
func (c Credentials) Get(key string) string {
	return c.values[key]
}

// Source returns the dotenv file that contributed values, if any.
func (c Credentials) Source() string {
	return c.source
}

// MissingRequired lists required credential names that are unset.
func (c Credentials) MissingRequired() []string {
	return c.missing(RequiredCredentials)
}

// MissingOptional lists optional credential names that are unset.
func (c Credentials) MissingOptional() []string {
	return c.missing(OptionalCredentials)
}

func (c Credentials) missing(keys []string) []string {
	var out []string
	for _, key := range keys {
		if c.values[key] == "" {
			out = append(out, key)
		}
	}
	return out
}
