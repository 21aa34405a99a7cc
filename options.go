package featurecheck

import (
	"io"
	"log/slog"
	"os"
)

// DefaultTargetDir is the scratch build directory, kept apart from the
// regular target directory so isolated builds don't invalidate its cache.
const DefaultTargetDir = "target/features_check"

// verifyConfig holds the configuration for a verification run.
type verifyConfig struct {
	tool          string
	manifestPath  string
	targetDir     string
	runTests      bool
	excludePrefix string
	skip          []string

	runner Runner
	logger *slog.Logger
	out    io.Writer // progress lines
	stdout io.Writer // build tool stdout
	stderr io.Writer // build tool stderr
}

func defaultVerifyConfig() *verifyConfig {
	return &verifyConfig{
		tool:          DefaultTool,
		manifestPath:  DefaultManifestPath,
		targetDir:     DefaultTargetDir,
		excludePrefix: DefaultExcludePrefix,
		runner:        ExecRunner{},
		logger:        slog.New(slog.DiscardHandler),
		out:           os.Stdout,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// Option configures a [Verifier].
type Option func(*verifyConfig)

// WithTool sets the build tool executable. Empty keeps [DefaultTool].
func WithTool(tool string) Option {
	return func(c *verifyConfig) {
		if tool != "" {
			c.tool = tool
		}
	}
}

// WithManifestPath sets the manifest location. Empty keeps [DefaultManifestPath].
func WithManifestPath(path string) Option {
	return func(c *verifyConfig) {
		if path != "" {
			c.manifestPath = path
		}
	}
}

// WithTargetDir sets the scratch build directory. Empty keeps [DefaultTargetDir].
func WithTargetDir(dir string) Option {
	return func(c *verifyConfig) {
		if dir != "" {
			c.targetDir = dir
		}
	}
}

// WithTests also runs the test action for every feature.
func WithTests(enabled bool) Option {
	return func(c *verifyConfig) {
		c.runTests = enabled
	}
}

// WithExcludePrefix sets the reserved prefix; features starting with it are
// never verified. An empty prefix disables the filter.
func WithExcludePrefix(prefix string) Option {
	return func(c *verifyConfig) {
		c.excludePrefix = prefix
	}
}

// WithSkip excludes the named features.
func WithSkip(names ...string) Option {
	return func(c *verifyConfig) {
		c.skip = append(c.skip, names...)
	}
}

// WithRunner replaces the process runner.
// This is primarily for testing.
func WithRunner(r Runner) Option {
	return func(c *verifyConfig) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithLogger sets the structured logger used for invocation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *verifyConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(c *verifyConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// WithToolOutput sets where the build tool's output streams are forwarded.
func WithToolOutput(stdout, stderr io.Writer) Option {
	return func(c *verifyConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}
