package featurecheck

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultManifestPath is the manifest read when no path is configured.
const DefaultManifestPath = "Cargo.toml"

// Manifest holds the parts of a package manifest the verifier needs.
type Manifest struct {
	// Path is where the manifest was loaded from.
	Path string
	// Package is the [package] name, empty if not declared.
	Package string

	// features in declaration order.
	features []string
}

// manifestFile is the decoding target. Feature definitions are never
// inspected, so they stay undecoded.
type manifestFile struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Features map[string]toml.Primitive `toml:"features"`
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// ParseManifest parses a manifest from a reader.
// Feature names are returned by [Manifest.Features] in the order they are
// declared in the document, which a plain map decode would lose.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var mf manifestFile
	md, err := toml.NewDecoder(r).Decode(&mf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestParse, err)
	}

	m := &Manifest{Package: mf.Package.Name}
	seen := make(map[string]struct{}, len(mf.Features))
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "features" {
			continue
		}
		name := key[1]
		if _, ok := mf.Features[name]; !ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		m.features = append(m.features, name)
	}

	return m, nil
}

// Features returns the declared feature names in declaration order.
// The returned slice is a copy.
func (m *Manifest) Features() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.features))
	copy(out, m.features)
	return out
}
