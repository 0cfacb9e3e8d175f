package excel

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"safetyhub/domain/analytics"
	"safetyhub/domain/core"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"gopkg.in/yaml.v3"
)

// DefaultFuzzyThreshold is the minimum similarity (0-100) for a fuzzy match.
const DefaultFuzzyThreshold = 80

const maxCollectionNameLen = 1500

// CollectionPatterns lists the sheet names that map onto one collection.
type CollectionPatterns struct {
	Collection string   `yaml:"collection"`
	Patterns   []string `yaml:"patterns"`
}

// KeywordCollection routes sheets whose name contains Keyword to Collection.
type KeywordCollection struct {
	Keyword    string `yaml:"keyword"`
	Collection string `yaml:"collection"`
}

// Mapping decides which collection a sheet is written to.
type Mapping struct {
	Core           []CollectionPatterns `yaml:"core"`
	Extended       []KeywordCollection  `yaml:"extended"`
	FuzzyThreshold int                  `yaml:"fuzzy_threshold"`
}

// DefaultMapping returns the built-in sheet synonyms.
func DefaultMapping() *Mapping {
	return &Mapping{
		Core: []CollectionPatterns{
			{Collection: analytics.Incidents, Patterns: []string{
				"INCIDENT TRACKER", "Incident Log", "Safety Incidents", "INCIDENTS", "incident", "accident",
			}},
			{Collection: analytics.Inspections, Patterns: []string{
				"Inspection Reports", "Audit Results", "Compliance Checklists", "INSPECTIONS", "inspection", "audit",
			}},
			{Collection: analytics.Trainings, Patterns: []string{
				"TRAINING & COMPETENCY REGISTER", "Induction/Training Log", "Employee Training", "TRAININGS", "training", "competency",
			}},
		},
		Extended: []KeywordCollection{
			{Keyword: "MAINTENANCE", Collection: analytics.MaintenanceRecords},
			{Keyword: "NEAR MISS", Collection: analytics.NearMissReports},
			{Keyword: "NEAR-MISS", Collection: analytics.NearMissReports},
			{Keyword: "SAFETY VIOLATIONS", Collection: analytics.SafetyViolations},
			{Keyword: "AUDIT", Collection: analytics.AuditResults},
			{Keyword: "ENVIRONMENTAL", Collection: analytics.EnvironmentalConditions},
			{Keyword: "WEATHER", Collection: analytics.EnvironmentalConditions},
			{Keyword: "EQUIPMENT", Collection: analytics.EquipmentLogs},
		},
		FuzzyThreshold: DefaultFuzzyThreshold,
	}
}

// LoadMapping reads a YAML mapping file. Sections missing from the file keep
// their defaults. An empty path returns the defaults.
func LoadMapping(path string) (*Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigurationError("collection_mapping_file", err.Error())
	}
	var file Mapping
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.NewFormatError(path, err)
	}
	if len(file.Core) > 0 {
		m.Core = file.Core
	}
	if len(file.Extended) > 0 {
		m.Extended = file.Extended
	}
	if file.FuzzyThreshold > 0 {
		if file.FuzzyThreshold > 100 {
			return nil, core.NewConfigurationError("fuzzy_threshold", fmt.Sprintf("must be at most 100, got %d", file.FuzzyThreshold))
		}
		m.FuzzyThreshold = file.FuzzyThreshold
	}
	return m, nil
}

// CollectionFor maps a sheet name to its collection: exact synonym match
// first, then the most similar synonym at or above the fuzzy threshold, then
// extended keywords, else the sanitized sheet name.
func (m *Mapping) CollectionFor(sheet string) string {
	upper := strings.ToUpper(sheet)

	for _, c := range m.Core {
		if upper == strings.ToUpper(c.Collection) {
			return c.Collection
		}
		for _, p := range c.Patterns {
			if upper == strings.ToUpper(p) {
				return c.Collection
			}
		}
	}

	best, bestScore := "", 0
	for _, c := range m.Core {
		for _, p := range c.Patterns {
			score := similarity(upper, strings.ToUpper(p))
			if score > bestScore && score >= m.FuzzyThreshold {
				best, bestScore = c.Collection, score
			}
		}
	}
	if best != "" {
		return best
	}

	for _, k := range m.Extended {
		if strings.Contains(upper, strings.ToUpper(k.Keyword)) {
			return k.Collection
		}
	}
	return SanitizeCollectionName(sheet)
}

// similarity is the Levenshtein ratio of a and b scaled to 0-100.
func similarity(a, b string) int {
	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return int(math.Round(ratio * 100))
}

func replaceSpecial(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// SanitizeColumnName keeps letters, digits and underscores, replacing
// anything else with "_". Names that are empty or start with a digit get a
// leading underscore.
func SanitizeColumnName(name string) string {
	cleaned := replaceSpecial(name)
	if cleaned == "" || unicode.IsDigit([]rune(cleaned)[0]) {
		cleaned = "_" + cleaned
	}
	if cleaned == "_" {
		return "unnamed_column"
	}
	return cleaned
}

// SanitizeCollectionName makes a sheet name usable as a collection name.
func SanitizeCollectionName(name string) string {
	cleaned := replaceSpecial(name)
	if r := []rune(cleaned); len(r) > maxCollectionNameLen {
		cleaned = string(r[:maxCollectionNameLen])
	}
	if cleaned == "" {
		return "unnamed_sheet"
	}
	return cleaned
}
