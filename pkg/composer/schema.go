package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// manifestFile is the subset of composer.json the checker reads.
type manifestFile struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Require     requireMap `json:"require"`
	RequireDev  requireMap `json:"require-dev"`
	Replace     requireMap `json:"replace"`
	Config      struct {
		VendorDir string `json:"vendor-dir"`
	} `json:"config"`
}

// lockFile is the subset of composer.lock the checker reads.
type lockFile struct {
	ContentHash string         `json:"content-hash"`
	Packages    []packageEntry `json:"packages"`
	PackagesDev []packageEntry `json:"packages-dev"`
}

// installedFile accepts both installed.json layouts: Composer 1 writes a bare
// array of packages, Composer 2 wraps it in {"packages": [...]}.
type installedFile struct {
	Packages []packageEntry
}

func (f *installedFile) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &f.Packages)
	}
	var v2 struct {
		Packages []packageEntry `json:"packages"`
	}
	if err := json.Unmarshal(trimmed, &v2); err != nil {
		return err
	}
	f.Packages = v2.Packages
	return nil
}

// packageEntry is one package as recorded in composer.lock or installed.json.
type packageEntry struct {
	Name              string     `json:"name"`
	Version           string     `json:"version"`
	VersionNormalized string     `json:"version_normalized"`
	Type              string     `json:"type"`
	Description       string     `json:"description"`
	Require           requireMap `json:"require"`
	RequireDev        requireMap `json:"require-dev"`
	Replace           requireMap `json:"replace"`
}

func (e packageEntry) toPackage() (*Package, error) {
	if strings.TrimSpace(e.Name) == "" {
		return nil, fmt.Errorf("package entry without a name")
	}
	name := strings.ToLower(e.Name)
	v := e.VersionNormalized
	if v == "" {
		v = e.Version
	}
	return &Package{
		Name:          name,
		PrettyName:    e.Name,
		Version:       v,
		PrettyVersion: e.Version,
		Type:          typeOrDefault(e.Type),
		Description:   e.Description,
		Require:       newLinks(name, e.Require, Requires),
		RequireDev:    newLinks(name, e.RequireDev, DevRequires),
		Replace:       newLinks(name, e.Replace, Replaces),
	}, nil
}

func (m manifestFile) toPackage() *Package {
	pretty := m.Name
	if pretty == "" {
		pretty = RootName
	}
	name := strings.ToLower(pretty)
	return &Package{
		Name:          name,
		PrettyName:    pretty,
		Version:       m.Version,
		PrettyVersion: m.Version,
		Type:          typeOrDefault(m.Type),
		Description:   m.Description,
		Require:       newLinks(name, m.Require, Requires),
		RequireDev:    newLinks(name, m.RequireDev, DevRequires),
		Replace:       newLinks(name, m.Replace, Replaces),
		Root:          true,
	}
}

func typeOrDefault(t string) string {
	if t == "" {
		return DefaultType
	}
	return t
}

// requireMap decodes a require or replace section. PHP encodes an empty map as [], so
// an empty array and null are both accepted as "no links".
type requireMap map[string]string

func (r *requireMap) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			return fmt.Errorf("link section must be an object, got a non-empty array")
		}
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*r = m
	return nil
}
