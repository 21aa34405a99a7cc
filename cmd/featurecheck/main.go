package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/leodido/featurecheck"
	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags these remain at their zero values and the
// version command omits them.
var (
	version = ""
	commit  = ""
	date    = ""
)

// newRunner builds the process runner used by every subcommand.
var newRunner = func() featurecheck.Runner { return featurecheck.ExecRunner{} }

// errFeaturesFailed signals that the report was printed and at least one
// feature failed.
var errFeaturesFailed = errors.New("one or more features failed")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errFeaturesFailed) {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := verifyCmd(stdout, stderr)
	root.AddCommand(listCmd(stdout))
	root.AddCommand(versionCmd(stdout))
	return root
}

// VerifyOptions defines flags for the root command.
type VerifyOptions struct {
	Tool          string       `flag:"tool" flagdescr:"Build tool executable" default:"cargo"`
	ManifestPath  string       `flag:"manifest-path" flagdescr:"Path to the package manifest" default:"Cargo.toml"`
	TargetDir     string       `flag:"target-dir" flagdescr:"Scratch build directory for isolated builds" default:"target/features_check"`
	Test          bool         `flag:"test" flagshort:"t" flagdescr:"Also run the tests of every feature"`
	ExcludePrefix string       `flag:"exclude-prefix" flagdescr:"Skip features whose name starts with this prefix (empty disables)" default:"utils-"`
	Skip          []string     `flag:"skip" flagdescr:"Feature names to skip"`
	Format        outputFormat `flag:"format" flagshort:"f" flagdescr:"Report format (text, json)" flagcustom:"true"`
	Verbose       bool         `flag:"verbose" flagshort:"v" flagdescr:"Log every build tool invocation"`
}

func (o *VerifyOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *VerifyOptions) DefineFormat(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineFormat(fieldValue), descr
}

func (o *VerifyOptions) DecodeFormat(input any) (any, error) {
	return decodeFormat(input)
}

func verifyCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "featurecheck",
		Short: "Verify that every Cargo feature builds on its own",
		Long: `featurecheck builds the package once per feature flag, with default features
disabled and exactly that feature enabled, to catch features that only compile
in combination with others.

Exits with code 0 if every feature passed (or none are declared), 1 otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			if err := structcli.Unmarshal(c, opts); err != nil {
				return err
			}
			opts.Tool = stringFlag(c, "tool", featurecheck.DefaultTool)
			opts.ManifestPath = stringFlag(c, "manifest-path", featurecheck.DefaultManifestPath)
			opts.TargetDir = stringFlag(c, "target-dir", featurecheck.DefaultTargetDir)
			opts.ExcludePrefix = stringFlag(c, "exclude-prefix", featurecheck.DefaultExcludePrefix)
			opts.Skip = skipFlag(c)
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			// Keep stdout clean for the JSON document.
			progress := stdout
			if opts.Format == formatJSON {
				progress = stderr
			}

			v := featurecheck.New(
				featurecheck.WithTool(opts.Tool),
				featurecheck.WithManifestPath(opts.ManifestPath),
				featurecheck.WithTargetDir(opts.TargetDir),
				featurecheck.WithTests(opts.Test),
				featurecheck.WithExcludePrefix(opts.ExcludePrefix),
				featurecheck.WithSkip(opts.Skip...),
				featurecheck.WithRunner(newRunner()),
				featurecheck.WithLogger(newLogger(stderr, opts.Verbose)),
				featurecheck.WithOutput(progress),
				featurecheck.WithToolOutput(progress, stderr),
			)

			report, err := v.Verify(c.Context())
			if err != nil {
				return err
			}

			if opts.Format == formatJSON {
				if err := printJSON(stdout, report); err != nil {
					return err
				}
			} else if err := report.Write(stdout); err != nil {
				return err
			}

			if !report.OK() {
				return errFeaturesFailed
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// ListOptions defines flags for the list subcommand.
type ListOptions struct {
	ManifestPath  string       `flag:"manifest-path" flagdescr:"Path to the package manifest" default:"Cargo.toml"`
	ExcludePrefix string       `flag:"exclude-prefix" flagdescr:"Skip features whose name starts with this prefix (empty disables)" default:"utils-"`
	Skip          []string     `flag:"skip" flagdescr:"Feature names to skip"`
	Format        outputFormat `flag:"format" flagshort:"f" flagdescr:"Output format (text, json)" flagcustom:"true"`
}

func (o *ListOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *ListOptions) DefineFormat(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	return defineFormat(fieldValue), descr
}

func (o *ListOptions) DecodeFormat(input any) (any, error) {
	return decodeFormat(input)
}

func listCmd(stdout io.Writer) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the features that would be verified",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			if err := structcli.Unmarshal(c, opts); err != nil {
				return err
			}
			opts.ManifestPath = stringFlag(c, "manifest-path", featurecheck.DefaultManifestPath)
			opts.ExcludePrefix = stringFlag(c, "exclude-prefix", featurecheck.DefaultExcludePrefix)
			opts.Skip = skipFlag(c)
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			path := opts.ManifestPath
			if path == "" {
				path = featurecheck.DefaultManifestPath
			}
			m, err := featurecheck.LoadManifest(path)
			if err != nil {
				return err
			}

			features := featurecheck.SelectFeatures(m, opts.ExcludePrefix, opts.Skip...)
			if opts.Format == formatJSON {
				return printJSON(stdout, map[string]any{
					"manifest": m.Path,
					"package":  m.Package,
					"features": features,
				})
			}

			for _, f := range features {
				fmt.Fprintln(stdout, f)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// VersionOptions defines flags for the version subcommand.
type VersionOptions struct {
	Tool string `flag:"tool" flagdescr:"Build tool executable" default:"cargo"`
}

func (o *VersionOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func versionCmd(stdout io.Writer) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show tool and build tool version",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Fprintf(stdout, "featurecheck %s", version)
				if commit != "" {
					fmt.Fprintf(stdout, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(stdout, " built %s", date)
				}
				fmt.Fprintln(stdout)
			} else {
				fmt.Fprintln(stdout, "featurecheck (dev)")
			}

			tool := stringFlag(c, "tool", featurecheck.DefaultTool)
			v, err := featurecheck.ToolVersion(c.Context(), newRunner(), tool)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Build tool: %s\n", v)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// stringFlag returns the value given on the command line for name, or def
// when the flag was not passed. An explicitly empty value is kept: for
// --exclude-prefix it disables the filter, which structcli would otherwise
// replace with the tag default.
func stringFlag(c *cobra.Command, name, def string) string {
	f := c.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return def
	}
	return f.Value.String()
}

// skipFlag returns the --skip names of this invocation only.
func skipFlag(c *cobra.Command) []string {
	f := c.Flags().Lookup("skip")
	if f == nil || !f.Changed {
		return nil
	}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return sv.GetSlice()
	}
	return strings.Split(f.Value.String(), ",")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printError writes a fatal error and, where one exists, how to fix it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := remediation(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
}

func remediation(err error) string {
	switch {
	case errors.Is(err, featurecheck.ErrToolNotFound):
		return "Install Rust and ensure cargo is in PATH."
	case errors.Is(err, featurecheck.ErrManifestNotFound):
		return "Run featurecheck from the package root or pass --manifest-path."
	case errors.Is(err, featurecheck.ErrTargetDir):
		return "Pass a writable --target-dir."
	default:
		return ""
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
)

var formatIdentifiers = map[outputFormat][]string{
	formatText: {"text"},
	formatJSON: {"json"},
}

func (f outputFormat) String() string {
	if ids, ok := formatIdentifiers[f]; ok {
		return ids[0]
	}
	return fmt.Sprintf("outputFormat(%d)", int(f))
}

func defineFormat(fieldValue reflect.Value) pflag.Value {
	fieldPtr := fieldValue.Addr().Interface().(*outputFormat)
	*fieldPtr = formatText
	return enumflag.New(fieldPtr, "format", formatIdentifiers, enumflag.EnumCaseInsensitive)
}

func decodeFormat(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}
	return parseOutputFormat(s)
}

func parseOutputFormat(input string) (outputFormat, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return formatText, nil
	}

	var f outputFormat
	value := enumflag.New(&f, "format", formatIdentifiers, enumflag.EnumCaseInsensitive)
	if err := value.Set(name); err != nil {
		return formatText, fmt.Errorf("unknown format: %q (available: text, json)", name)
	}
	return f, nil
}
