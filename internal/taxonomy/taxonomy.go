// Package taxonomy loads the service and region catalog used at the intake
// boundary: canonical tag names, alias resolution and the single-letter
// codes embedded in lead ids.
package taxonomy

import (
	"os"
	"strings"

	"leadrouter_backend/internal/routing/domain"

	"gopkg.in/yaml.v3"
)

// UnknownCode marks a tag without a catalog entry in lead ids.
const UnknownCode = "X"

// Entry is one catalog item: the canonical tag, its lead-id code and the
// accepted aliases.
type Entry struct {
	Name    string   `yaml:"name"`
	Code    string   `yaml:"code"`
	Aliases []string `yaml:"aliases"`
}

// Taxonomy is the full service/region catalog.
type Taxonomy struct {
	Services []Entry `yaml:"services"`
	Regions  []Entry `yaml:"regions"`

	serviceIndex map[string]Entry
	regionIndex  map[string]Entry
}

// Load reads the catalog from a YAML file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, err
	}
	tax.buildIndexes()
	return &tax, nil
}

func (t *Taxonomy) buildIndexes() {
	t.serviceIndex = indexEntries(t.Services)
	t.regionIndex = indexEntries(t.Regions)
}

func indexEntries(entries []Entry) map[string]Entry {
	index := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		index[strings.ToLower(entry.Name)] = entry
		for _, alias := range entry.Aliases {
			index[strings.ToLower(alias)] = entry
		}
	}
	return index
}

// CanonicalService resolves a service tag (or alias) to its canonical name.
// Unknown tags are returned lowercased as-is; the matcher treats tags as
// opaque strings, the catalog only canonicalizes the known ones.
func (t *Taxonomy) CanonicalService(tag string) string {
	return canonical(t.serviceIndex, tag)
}

// CanonicalRegion resolves a region tag (or alias) to its canonical name.
func (t *Taxonomy) CanonicalRegion(tag string) string {
	return canonical(t.regionIndex, tag)
}

func canonical(index map[string]Entry, tag string) string {
	folded := strings.ToLower(strings.TrimSpace(tag))
	if entry, ok := index[folded]; ok {
		return strings.ToLower(entry.Name)
	}
	return folded
}

// ServiceCode returns the lead-id code for a service tag.
func (t *Taxonomy) ServiceCode(tag string) string {
	return code(t.serviceIndex, tag)
}

// RegionCode returns the lead-id code for a region tag.
func (t *Taxonomy) RegionCode(tag string) string {
	return code(t.regionIndex, tag)
}

func code(index map[string]Entry, tag string) string {
	folded := strings.ToLower(strings.TrimSpace(tag))
	if entry, ok := index[folded]; ok && entry.Code != "" {
		return strings.ToUpper(entry.Code)
	}
	return UnknownCode
}

// NormalizeServiceCSV canonicalizes a comma-separated service list.
func (t *Taxonomy) NormalizeServiceCSV(csv string) string {
	return t.normalizeCSV(csv, t.CanonicalService)
}

// NormalizeRegionCSV canonicalizes a comma-separated region list.
func (t *Taxonomy) NormalizeRegionCSV(csv string) string {
	return t.normalizeCSV(csv, t.CanonicalRegion)
}

func (t *Taxonomy) normalizeCSV(csv string, resolve func(string) string) string {
	tags := domain.SplitTags(csv)
	for i, tag := range tags {
		tags[i] = resolve(tag)
	}
	return domain.JoinTags(tags)
}
