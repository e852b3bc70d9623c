// Package manifest reads package.json files.
//
// Dependency and script maps are decoded into slices so the order in
// which they appear in the file survives; analyzers report findings in
// that order.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "package.json"

// Dependency is one name/version pair.
type Dependency struct {
	Name    string
	Version string
}

// Deps is an ordered dependency map.
type Deps []Dependency

// Has reports whether name is listed.
func (d Deps) Has(name string) bool {
	for _, dep := range d {
		if dep.Name == name {
			return true
		}
	}
	return false
}

// Names returns the dependency names in file order.
func (d Deps) Names() []string {
	names := make([]string, len(d))
	for i, dep := range d {
		names[i] = dep.Name
	}
	return names
}

// Script is one entry of the "scripts" object.
type Script struct {
	Name    string
	Command string
}

// Manifest is the subset of package.json lambda-doctor reads.
type Manifest struct {
	Name            string
	Version         string
	Type            string
	Dependencies    Deps
	DevDependencies Deps
	Scripts         []Script
}

// IsModule reports whether the package declares "type": "module".
func (m *Manifest) IsModule() bool {
	return m.Type == "module"
}

// AllDependencies merges production and development dependencies.
// Production entries come first; a development entry with the same name
// replaces the version but keeps the production position.
func (m *Manifest) AllDependencies() Deps {
	all := make(Deps, 0, len(m.Dependencies)+len(m.DevDependencies))
	all = append(all, m.Dependencies...)
	for _, dev := range m.DevDependencies {
		all = all.set(dev.Name, dev.Version)
	}
	return all
}

func (d Deps) set(name, version string) Deps {
	for i := range d {
		if d[i].Name == name {
			d[i].Version = version
			return d
		}
	}
	return append(d, Dependency{Name: name, Version: version})
}

// Load reads and parses <dir>/package.json.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes package.json content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := easyjson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (m *Manifest) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "name":
			m.Name = stringValue(in)
		case "version":
			m.Version = stringValue(in)
		case "type":
			m.Type = stringValue(in)
		case "dependencies":
			m.Dependencies = readDeps(in)
		case "devDependencies":
			m.DevDependencies = readDeps(in)
		case "scripts":
			m.Scripts = readScripts(in)
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

// stringValue reads any value and keeps it only if it is a string.
func stringValue(in *jlexer.Lexer) string {
	s, _ := in.Interface().(string)
	return s
}

func readDeps(in *jlexer.Lexer) Deps {
	deps := make(Deps, 0)
	if !in.IsDelim('{') {
		in.SkipRecursive()
		return deps
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		name := in.String()
		in.WantColon()
		deps = deps.set(name, stringValue(in))
		in.WantComma()
	}
	in.Delim('}')
	return deps
}

func readScripts(in *jlexer.Lexer) []Script {
	scripts := make([]Script, 0)
	if !in.IsDelim('{') {
		in.SkipRecursive()
		return scripts
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		name := in.String()
		in.WantColon()
		if cmd, ok := in.Interface().(string); ok {
			scripts = append(scripts, Script{Name: name, Command: cmd})
		}
		in.WantComma()
	}
	in.Delim('}')
	return scripts
}
