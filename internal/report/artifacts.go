package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/rs/zerolog"
)

// Source is what failure artifacts are captured from. browser.Page
// implements it
type Source interface {
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	ConsoleLines() []string
}

// Failure lists the artifact files written for one failed test. A path is
// empty when that artifact could not be captured
type Failure struct {
	Screenshot string
	DOM        string
	Console    string
}

// Collector stores failure artifacts under the configured directories
type Collector struct {
	cfg     config.ReportConfig
	log     zerolog.Logger
	timeout time.Duration
}

// NewCollector creates a collector for cfg
func NewCollector(cfg config.ReportConfig, log zerolog.Logger) *Collector {
	return &Collector{
		cfg:     cfg,
		log:     log.With().Str("component", "report").Logger(),
		timeout: 10 * time.Second,
	}
}

// Reset removes the artifacts of a previous run
func (c *Collector) Reset() error {
	for _, dir := range []string{c.cfg.ResultsDir, c.cfg.ScreenshotDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	c.log.Info().Str("results_dir", c.cfg.ResultsDir).Msg("Results directory reset")
	return nil
}

// CaptureFailure stores a screenshot, the DOM and the console log of src.
// Capture is best effort: every problem is logged and the remaining
// artifacts are still written
func (c *Collector) CaptureFailure(ctx context.Context, testName string, src Source) Failure {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	name := ArtifactName(testName)
	log := c.log.With().Str("test", testName).Logger()
	var f Failure

	if png, err := src.Screenshot(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to capture screenshot")
	} else {
		f.Screenshot = c.write(log, filepath.Join(c.cfg.ScreenshotDir, name+".png"), png)
	}

	if html, err := src.HTML(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to capture DOM")
	} else {
		f.DOM = c.write(log, filepath.Join(c.cfg.ResultsDir, "dom", name+".html"), []byte(html))
	}

	if lines := src.ConsoleLines(); len(lines) > 0 {
		f.Console = c.write(log, filepath.Join(c.cfg.ResultsDir, "console", name+".log"), []byte(strings.Join(lines, "\n")+"\n"))
	}

	log.Info().
		Str("screenshot", f.Screenshot).
		Str("dom", f.DOM).
		Str("console", f.Console).
		Msg("Failure artifacts captured")
	return f
}

func (c *Collector) write(log zerolog.Logger, path string, data []byte) string {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to create artifact dir")
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write artifact")
		return ""
	}
	return path
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArtifactName turns a test name such as TestAuth/login_ok into a file name
func ArtifactName(testName string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(testName, "_"), "_.")
	if name == "" {
		return "unnamed"
	}
	return name
}
