package featurecheck

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	infoColor    = color.New(color.FgBlue)
	headerColor  = color.New(color.Bold)
)

const (
	successSymbol = "✔ "
	failureSymbol = "✗ "
	infoSymbol    = "ℹ "
)

func writeStageSuccess(w io.Writer, s Stage, feature string) {
	msg := "compiled successfully"
	if s == StageTest {
		msg = "tests passed"
	}
	successColor.Fprintf(w, "%sFeature '%s' %s\n", successSymbol, feature, msg)
}

func writeStageFailure(w io.Writer, s Stage, feature string) {
	msg := "failed to compile"
	if s == StageTest {
		msg = "tests failed"
	}
	failureColor.Fprintf(w, "%sFeature '%s' %s\n", failureSymbol, feature, msg)
}

// Write prints the human-readable summary of the run.
func (r *Report) Write(w io.Writer) error {
	if r.Empty() {
		_, err := infoColor.Fprintf(w, "%sNo features defined in %s.\n", infoSymbol, filepath.Base(r.Manifest))
		return err
	}

	if r.OK() {
		msg := "All features compiled successfully!"
		if r.Tested {
			msg = "All features compiled and tested successfully!"
		}
		_, err := successColor.Fprintf(w, "\n%s%s\n", successSymbol, msg)
		return err
	}

	if err := writeList(w, "Failed features:", r.CompileFailures); err != nil {
		return err
	}
	return writeList(w, "Failed tests:", r.TestFailures)
}

func writeList(w io.Writer, header string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if _, err := headerColor.Fprintf(w, "\n%s\n", header); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  - %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

// String returns the human-readable summary of the run.
func (r *Report) String() string {
	var b strings.Builder
	_ = r.Write(&b)
	return b.String()
}
