package featurecheck

import "strings"

// DefaultExcludePrefix marks internal helper features that are not meant to
// compile on their own.
const DefaultExcludePrefix = "utils-"

// featureSet filters manifest feature names while preserving their order.
type featureSet struct {
	excludePrefix string
	skip          map[string]struct{}
}

func newFeatureSet(excludePrefix string, skip []string) featureSet {
	fs := featureSet{
		excludePrefix: excludePrefix,
		skip:          make(map[string]struct{}, len(skip)),
	}
	for _, name := range skip {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fs.skip[name] = struct{}{}
	}
	return fs
}

func (fs featureSet) excluded(name string) bool {
	if fs.excludePrefix != "" && strings.HasPrefix(name, fs.excludePrefix) {
		return true
	}
	_, ok := fs.skip[name]
	return ok
}

func (fs featureSet) filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if fs.excluded(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// SelectFeatures returns the manifest's features that should be verified:
// declaration order is kept, names starting with excludePrefix are dropped
// (an empty prefix disables the filter) and so are names listed in skip.
func SelectFeatures(m *Manifest, excludePrefix string, skip ...string) []string {
	return newFeatureSet(excludePrefix, skip).filter(m.Features())
}
