// Package feeds reads and writes the paragraph-oriented package index format
// used by opkg/LEDE feeds: records of "Key: value" lines separated by blank
// lines. Attribute order is preserved; Source and Maintainer are dropped on
// re-serialization.
package feeds

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Well-known attribute keys.
const (
	AttrPackage  = "Package"
	AttrFilename = "Filename"
	AttrVersion  = "Version"
	AttrRequire  = "Require"
)

// excludedAttrs are not emitted when a package record is written back.
var excludedAttrs = map[string]bool{
	"Source":     true,
	"Maintainer": true,
}

// Package is one record of a feeds index: an ordered set of attributes.
type Package struct {
	keys   []string
	values map[string]string
}

// Name returns the Package attribute.
func (p *Package) Name() string { return p.values[AttrPackage] }

// Filename returns the Filename attribute.
func (p *Package) Filename() string { return p.values[AttrFilename] }

// Version returns the Version attribute.
func (p *Package) Version() string { return p.values[AttrVersion] }

// Require returns the Require attribute.
func (p *Package) Require() string { return p.values[AttrRequire] }

// SetRequire sets the Require attribute, appending the key if new.
func (p *Package) SetRequire(require string) {
	if _, ok := p.values[AttrRequire]; !ok {
		p.keys = append(p.keys, AttrRequire)
	}

	p.values[AttrRequire] = require
}

// Get returns the value of an arbitrary attribute.
func (p *Package) Get(key string) (string, bool) {
	v, ok := p.values[key]

	return v, ok
}

// Equal reports whether two packages have the same name and version.
func (p *Package) Equal(other *Package) bool {
	return other != nil && p.Name() == other.Name() && p.Version() == other.Version()
}

// WriteTo writes the record in index format, skipping excluded attributes.
// The record is terminated by a blank line.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, key := range p.keys {
		if excludedAttrs[key] {
			continue
		}

		n, err := fmt.Fprintf(w, "%s: %s\n", key, p.values[key])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	n, err := fmt.Fprintln(w)
	total += int64(n)

	return total, err
}

// Parse reads all package records from r.
func Parse(r io.Reader) ([]*Package, error) {
	var (
		packages []*Package
		current  *Package
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			if current != nil {
				packages = append(packages, current)
				current = nil
			}

			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("line %d: malformed attribute %q", lineNo, line)
		}

		if current == nil {
			current = &Package{values: make(map[string]string)}
		}

		key = strings.TrimSpace(key)
		if _, dup := current.values[key]; !dup {
			current.keys = append(current.keys, key)
		}

		current.values[key] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if current != nil {
		packages = append(packages, current)
	}

	return packages, nil
}

// ParseFile reads all package records from the index file at path.
func ParseFile(path string) ([]*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() { _ = f.Close() }()

	return Parse(f)
}
