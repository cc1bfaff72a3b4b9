package parcore

import (
	"os"
	"strconv"
)

// Environment variables honored by NewRuntime. Explicit options take
// precedence over the environment, the environment over built-in defaults.
const (
	// EnvNumThreads overrides the pool size (integer >= 1)
	EnvNumThreads = "PARCORE_NUM_THREADS"

	// EnvPinThreads enables pinning worker threads to CPUs ("1" or "true")
	EnvPinThreads = "PARCORE_PIN_THREADS"

	// EnvDisableWarnings suppresses runtime warnings ("1" or "true")
	EnvDisableWarnings = "PARCORE_DISABLE_WARNINGS"
)

// envSettings holds pool configuration read from the environment
type envSettings struct {
	numThreads      int // 0 = unset
	pinThreads      bool
	disableWarnings bool
}

// readEnvSettings parses the supported environment variables. Malformed
// values are ignored rather than fatal; the runtime logs a warning for
// them once a logger is attached.
func readEnvSettings() (s envSettings, malformed []string) {
	if v := os.Getenv(EnvNumThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			malformed = append(malformed, EnvNumThreads)
		} else {
			s.numThreads = n
		}
	}
	if v := os.Getenv(EnvPinThreads); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			malformed = append(malformed, EnvPinThreads)
		} else {
			s.pinThreads = b
		}
	}
	if v := os.Getenv(EnvDisableWarnings); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			malformed = append(malformed, EnvDisableWarnings)
		} else {
			s.disableWarnings = b
		}
	}
	return s, malformed
}
