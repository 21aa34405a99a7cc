package featurecheck

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage(t *testing.T) {
	tests := []struct {
		stage  Stage
		action string
		str    string
	}{
		{StageCheck, "check", "check"},
		{StageTest, "test", "test"},
		{Stage(42), "", "Stage(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.action, tt.stage.Action())
			assert.Equal(t, tt.str, tt.stage.String())
		})
	}
}

func TestStageArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"check", "--no-default-features", "--features", "zstd", "--target-dir", "target/features_check"},
		stageArgs(StageCheck, "zstd", DefaultTargetDir))
	assert.Equal(t,
		[]string{"test", "--no-default-features", "--features", "zstd", "--target-dir", "/tmp/x"},
		stageArgs(StageTest, "zstd", "/tmp/x"))
}

func TestFeatureError(t *testing.T) {
	inner := errors.New("exit status 101")

	fe := &FeatureError{Feature: "image", Stage: StageCheck, ExitCode: 101, Err: inner}
	assert.Equal(t, "feature image: failed to compile: exit status 101", fe.Error())
	assert.ErrorIs(t, fe, inner)

	fe = &FeatureError{Feature: "image", Stage: StageTest}
	assert.Equal(t, "feature image: tests failed", fe.Error())
	assert.Nil(t, fe.Unwrap())
}

func TestReport_Write(t *testing.T) {
	m := &Manifest{Path: "/src/demo/Cargo.toml", Package: "demo"}

	t.Run("empty", func(t *testing.T) {
		r := newReport(m, nil, false)
		assert.Equal(t, "ℹ No features defined in Cargo.toml.\n", r.String())
	})

	t.Run("all compiled", func(t *testing.T) {
		r := newReport(m, []string{"a"}, false)
		assert.Equal(t, "\n✔ All features compiled successfully!\n", r.String())
	})

	t.Run("all compiled and tested", func(t *testing.T) {
		r := newReport(m, []string{"a"}, true)
		assert.Equal(t, "\n✔ All features compiled and tested successfully!\n", r.String())
	})

	t.Run("failures", func(t *testing.T) {
		r := newReport(m, []string{"a", "b", "c"}, true)
		r.record(&FeatureError{Feature: "b", Stage: StageCheck})
		r.record(&FeatureError{Feature: "a", Stage: StageCheck})
		r.record(&FeatureError{Feature: "c", Stage: StageTest})

		want := "\nFailed features:\n  - b\n  - a\n" +
			"\nFailed tests:\n  - c\n"
		assert.Equal(t, want, r.String())
	})

	t.Run("compile failures only", func(t *testing.T) {
		r := newReport(m, []string{"a"}, false)
		r.record(&FeatureError{Feature: "a", Stage: StageCheck})
		assert.Equal(t, "\nFailed features:\n  - a\n", r.String())
	})
}

func TestReport_JSON(t *testing.T) {
	r := newReport(&Manifest{Path: "Cargo.toml", Package: "demo"}, []string{"a", "b"}, false)
	r.record(&FeatureError{Feature: "b", Stage: StageCheck})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"manifest": "Cargo.toml",
		"package": "demo",
		"features": ["a", "b"],
		"tested": false,
		"compile_failures": ["b"],
		"test_failures": []
	}`, string(data))
}

func TestReport_Err(t *testing.T) {
	r := newReport(&Manifest{}, []string{"a"}, true)
	assert.NoError(t, r.Err())
	assert.True(t, r.OK())

	r.record(&FeatureError{Feature: "a", Stage: StageTest})
	assert.False(t, r.OK())

	var fe *FeatureError
	require.ErrorAs(t, r.Err(), &fe)
	assert.Equal(t, StageTest, fe.Stage)
}
