package triage

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ConditionEntry is one catalog row.
type ConditionEntry struct {
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Title       string   `yaml:"title" json:"title"`
	Cause       string   `yaml:"cause" json:"cause"`
	HomeRemedy  string   `yaml:"home_remedy" json:"homeRemedy"`
	OTCAdvice   string   `yaml:"otc_advice" json:"otcAdvice"`
	DangerSigns string   `yaml:"danger_signs" json:"dangerSigns"`
	Urgency     Tier     `yaml:"urgency" json:"urgency"`
}

func (e ConditionEntry) clone() ConditionEntry {
	e.Keywords = append([]string(nil), e.Keywords...)
	return e
}

// matchedKeywords returns the entry keywords contained in any of the texts,
// in the entry's own keyword order.
func (e ConditionEntry) matchedKeywords(texts ...string) []string {
	var hits []string
	for _, kw := range e.Keywords {
		for _, text := range texts {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
				break
			}
		}
	}
	return hits
}

type catalogFile struct {
	Version    string           `yaml:"version"`
	Conditions []ConditionEntry `yaml:"conditions"`
}

// Catalog is the immutable condition table.
type Catalog struct {
	version string
	entries []ConditionEntry
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("triage: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog. Keywords are lowercased and trimmed.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Conditions) == 0 {
		return nil, errors.New("catalog has no conditions")
	}

	seen := make(map[string]bool, len(f.Conditions))
	entries := make([]ConditionEntry, 0, len(f.Conditions))
	for i, e := range f.Conditions {
		e.Title = strings.TrimSpace(e.Title)
		if e.Title == "" {
			return nil, fmt.Errorf("condition %d: title is required", i)
		}
		key := strings.ToLower(e.Title)
		if seen[key] {
			return nil, fmt.Errorf("condition %q: duplicate title", e.Title)
		}
		seen[key] = true

		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("condition %q: at least one keyword is required", e.Title)
		}
		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			kw = normalizeText(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("condition %q: blank keyword", e.Title)
			}
			keywords = append(keywords, kw)
		}
		e.Keywords = keywords

		if !e.Urgency.valid() {
			return nil, fmt.Errorf("condition %q: unknown urgency %q", e.Title, e.Urgency)
		}
		entries = append(entries, e)
	}

	return &Catalog{version: f.Version, entries: entries}, nil
}

// Version is the catalog's declared version string.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of all entries in declaration order.
func (c *Catalog) Entries() []ConditionEntry {
	out := make([]ConditionEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup returns every entry with a keyword contained in text, in
// declaration order. Matching is plain substring containment on the
// lowercased text, not word matching.
func (c *Catalog) Lookup(text string) []ConditionEntry {
	text = normalizeText(text)
	var out []ConditionEntry
	for _, e := range c.entries {
		if len(e.matchedKeywords(text)) > 0 {
			out = append(out, e.clone())
		}
	}
	return out
}
