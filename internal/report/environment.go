// Package report writes the run's environment description and the
// artifacts captured when a test fails
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nanoreddit-ui-autotests/internal/config"
)

// EnvironmentFile is the name of the environment report in the results dir
const EnvironmentFile = "environment.properties"

// Property is one line of the environment report
type Property struct {
	Key   string
	Value string
}

// EnvironmentProperties lists what the run was pointed at, in report order
func EnvironmentProperties(cfg *config.Config) []Property {
	return []Property{
		{"Base URL", cfg.App.BaseURL},
		{"API Base URL", cfg.App.APIBaseURL},
		{"Default Timeout (ms)", strconv.FormatInt(cfg.Browser.DefaultTimeout.Milliseconds(), 10)},
		{"Headless", strconv.FormatBool(cfg.Browser.Headless)},
		{"Screenshot Dir", cfg.Report.ScreenshotDir},
		{"Test Env", cfg.Env},
		{"Build ID", cfg.Report.BuildID},
	}
}

// WriteEnvironment writes environment.properties into the results dir and
// returns its path
func WriteEnvironment(cfg *config.Config) (string, error) {
	if err := os.MkdirAll(cfg.Report.ResultsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results dir: %w", err)
	}

	var b strings.Builder
	for _, p := range EnvironmentProperties(cfg) {
		b.WriteString(escapeProperty(p.Key, true))
		b.WriteByte('=')
		b.WriteString(escapeProperty(p.Value, false))
		b.WriteByte('\n')
	}

	path := filepath.Join(cfg.Report.ResultsDir, EnvironmentFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// escapeProperty escapes s for a Java properties file. Keys also escape
// spaces, values only a leading one
func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '=', ':', '#', '!':
			if key {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if key || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
