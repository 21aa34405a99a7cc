package featurecheck

import (
	"context"
	"fmt"
)

// Verifier checks every feature of a manifest in isolation.
type Verifier struct {
	cfg *verifyConfig
}

// New creates a [Verifier].
func New(opts ...Option) *Verifier {
	cfg := defaultVerifyConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Verifier{cfg: cfg}
}

// Verify runs the whole batch and returns its [Report].
//
// The returned error is non-nil only for fatal conditions: [ErrToolNotFound],
// [ErrToolInvocation], [ErrManifestNotFound], [ErrManifestParse] and
// [ErrTargetDir]. Per-feature failures are recorded in the report instead;
// use [Report.OK] or [Report.Err] to inspect them.
func (v *Verifier) Verify(ctx context.Context) (*Report, error) {
	if err := ProbeTool(ctx, v.cfg.runner, v.cfg.tool); err != nil {
		return nil, err
	}

	m, err := LoadManifest(v.cfg.manifestPath)
	if err != nil {
		return nil, err
	}

	features := SelectFeatures(m, v.cfg.excludePrefix, v.cfg.skip...)
	report := newReport(m, features, v.cfg.runTests)
	if report.Empty() {
		v.cfg.logger.Info("no features to verify", "manifest", m.Path)
		return report, nil
	}

	if err := checkTargetDir(v.cfg.targetDir); err != nil {
		return nil, err
	}

	fmt.Fprintf(v.cfg.out, "Testing %d features...\n", len(features))
	for i, feature := range features {
		fmt.Fprintf(v.cfg.out, "\nTesting feature %d/%d: %s\n", i+1, len(features), feature)

		// A compile failure does not skip the test stage.
		if fe := v.runStage(ctx, StageCheck, feature); fe != nil {
			report.record(fe)
		}
		if v.cfg.runTests {
			if fe := v.runStage(ctx, StageTest, feature); fe != nil {
				report.record(fe)
			}
		}
	}

	return report, nil
}

// runStage invokes the build tool once for a feature and prints its status line.
func (v *Verifier) runStage(ctx context.Context, s Stage, feature string) *FeatureError {
	args := stageArgs(s, feature, v.cfg.targetDir)
	inv := v.cfg.runner.Run(ctx, v.cfg.tool, args, v.cfg.stdout, v.cfg.stderr)
	v.cfg.logger.Debug("build tool finished",
		"tool", v.cfg.tool,
		"args", args,
		"exit_code", inv.ExitCode,
		"duration", inv.Duration,
	)

	if inv.Success() {
		writeStageSuccess(v.cfg.out, s, feature)
		return nil
	}

	writeStageFailure(v.cfg.out, s, feature)
	return &FeatureError{
		Feature:  feature,
		Stage:    s,
		ExitCode: inv.ExitCode,
		Err:      inv.Err,
	}
}
