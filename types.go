package featurecheck

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is returned when the build tool executable is not on PATH.
	ErrToolNotFound = errors.New("build tool not found")
	// ErrToolInvocation is returned when the build tool exists but its
	// version query exits non-zero.
	ErrToolInvocation = errors.New("build tool invocation failed")
	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestParse is returned when the manifest exists but cannot be decoded.
	ErrManifestParse = errors.New("manifest parse error")
	// ErrTargetDir is returned when the scratch build directory cannot be written.
	ErrTargetDir = errors.New("scratch build directory not writable")
)

// Stage identifies which build tool action a feature is verified with.
type Stage int

const (
	// StageCheck runs the build tool's check action (does it compile).
	StageCheck Stage = iota
	// StageTest runs the build tool's test action (do its tests pass).
	StageTest
)

var stageActions = map[Stage]string{
	StageCheck: "check",
	StageTest:  "test",
}

// Action returns the build tool subcommand for the stage.
func (s Stage) Action() string {
	return stageActions[s]
}

func (s Stage) String() string {
	if name, ok := stageActions[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", s)
}

// FeatureError represents a single feature failing one stage in isolation.
// It is recorded in the [Report] and never aborts the batch.
type FeatureError struct {
	Feature  string
	Stage    Stage
	ExitCode int
	Err      error
}

func (e *FeatureError) Error() string {
	verb := "failed to compile"
	if e.Stage == StageTest {
		verb = "tests failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("feature %s: %s: %v", e.Feature, verb, e.Err)
	}
	return fmt.Sprintf("feature %s: %s", e.Feature, verb)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// Report aggregates the outcome of one verification run.
type Report struct {
	// Manifest is the manifest path the features were read from.
	Manifest string `json:"manifest"`
	// Package is the manifest's package name, if declared.
	Package string `json:"package,omitempty"`
	// Features lists the features processed, in manifest declaration order.
	Features []string `json:"features"`
	// Tested reports whether the test stage ran for every feature.
	Tested bool `json:"tested"`

	// CompileFailures and TestFailures are independent, in failure order.
	CompileFailures []string `json:"compile_failures"`
	TestFailures    []string `json:"test_failures"`

	errs []*FeatureError
}

func newReport(m *Manifest, features []string, tested bool) *Report {
	return &Report{
		Manifest:        m.Path,
		Package:         m.Package,
		Features:        features,
		Tested:          tested,
		CompileFailures: []string{},
		TestFailures:    []string{},
	}
}

func (r *Report) record(fe *FeatureError) {
	r.errs = append(r.errs, fe)
	switch fe.Stage {
	case StageCheck:
		r.CompileFailures = append(r.CompileFailures, fe.Feature)
	case StageTest:
		r.TestFailures = append(r.TestFailures, fe.Feature)
	}
}

// OK returns true if no feature failed any stage.
func (r *Report) OK() bool {
	return len(r.CompileFailures) == 0 && len(r.TestFailures) == 0
}

// Empty returns true if the manifest yielded no features to verify.
func (r *Report) Empty() bool {
	return len(r.Features) == 0
}

// Err joins every recorded *[FeatureError], or returns nil if the run passed.
func (r *Report) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.errs))
	for _, fe := range r.errs {
		errs = append(errs, fe)
	}
	return errors.Join(errs...)
}
