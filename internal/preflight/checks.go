package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"pixal/internal/config"
)

// HealthChecker is the slice of the LLM client the ping uses.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckCredentials reports one result per known credential. Missing optional
// credentials are warnings.
func CheckCredentials(creds config.Credentials) []Result {
	missingRequired := toSet(creds.MissingRequired())
	missingOptional := toSet(creds.MissingOptional())

	results := make([]Result, 0, len(config.RequiredCredentials)+len(config.OptionalCredentials))
	for _, key := range config.RequiredCredentials {
		result := Result{Name: key, Passed: true, Detail: "set"}
		if _, missing := missingRequired[key]; missing {
			result = Result{Name: key, Detail: "missing (required)"}
		}
		results = append(results, result)
	}
	for _, key := range config.OptionalCredentials {
		result := Result{Name: key, Passed: true, Optional: true, Detail: "set"}
		if _, missing := missingOptional[key]; missing {
			result = Result{Name: key, Optional: true, Detail: "missing (optional)"}
		}
		results = append(results, result)
	}
	return results
}

// CheckLLM verifies that a model endpoint is reachable and the key is valid.
// It uses a 30-second timeout. The result is always optional.
func CheckLLM(ctx context.Context, name, apiKey string, client HealthChecker) Result {
	if apiKey == "" {
		return Result{Name: name, Optional: true, Detail: "skipped (API key missing)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes when path is an accessible directory or when its
// nearest existing ancestor would let the stages create it.
func CheckCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
