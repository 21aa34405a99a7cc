// Package featurecheck verifies that every feature flag of a Cargo package
// builds on its own.
//
// A single "build everything together" CI step cannot catch a feature that
// only compiles because another feature happens to be enabled too. This
// package enumerates the features declared in a manifest and invokes the
// build tool once per feature, with default features disabled and exactly
// that one feature enabled.
//
// # Quick Verify
//
//	report, err := featurecheck.New().Verify(ctx)
//	if err != nil {
//	    log.Fatal(err) // tool missing, manifest unreadable, ...
//	}
//	fmt.Print(report)
//	if !report.OK() {
//	    os.Exit(1)
//	}
//
// # Extended Mode
//
// [WithTests] additionally runs the test action for every feature. The test
// stage is attempted even when the same feature failed to compile, so the
// two failure lists of the [Report] are independent:
//
//	v := featurecheck.New(
//	    featurecheck.WithTests(true),
//	    featurecheck.WithExcludePrefix("utils-"),
//	)
//
// # Errors
//
// Conditions that stop the run before or outside the per-feature loop are
// returned from [Verifier.Verify] and match one of [ErrToolNotFound],
// [ErrToolInvocation], [ErrManifestNotFound], [ErrManifestParse] or
// [ErrTargetDir] via errors.Is.
//
// A feature failing a stage is never fatal. It is recorded as a
// *[FeatureError] in the [Report] and the batch moves on.
//
// # Invocations
//
// Each invocation has the form
//
//	cargo <check|test> --no-default-features --features <name> --target-dir target/features_check
//
// and runs to completion through a [Runner]. Nothing is retried and nothing
// runs in parallel.
package featurecheck
