// Package taxonomy recognizes skills from a static catalog in resume text.
package taxonomy

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumescore/internal/types"

	"github.com/BurntSushi/toml"
)

//go:embed taxonomy.toml
var defaultTaxonomy []byte

var defaultMatcher = mustNewMatcher(defaultTaxonomy)

// Skill is one catalog entry
type Skill struct {
	Name     string   `toml:"name"`
	Category string   `toml:"category"`
	Aliases  []string `toml:"aliases"`
	InDemand bool     `toml:"in_demand"`
}

// Taxonomy is the decoded catalog document
type Taxonomy struct {
	Version string  `toml:"version"`
	Skills  []Skill `toml:"skill"`
}

// Parse decodes and validates a TOML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if _, err := toml.Decode(string(data), &t); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks names are unique and every skill has at least one alias.
func (t *Taxonomy) Validate() error {
	if len(t.Skills) == 0 {
		return fmt.Errorf("taxonomy has no skills")
	}
	seen := make(map[string]bool, len(t.Skills))
	for i, s := range t.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("skill %d has no name", i)
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("duplicate skill %q", s.Name)
		}
		seen[key] = true
		if len(s.Aliases) == 0 {
			return fmt.Errorf("skill %q has no aliases", s.Name)
		}
		for _, a := range s.Aliases {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("skill %q has an empty alias", s.Name)
			}
		}
	}
	return nil
}

type entry struct {
	skill   Skill
	pattern *regexp.Regexp
}

// Matcher is a compiled, read-only taxonomy. It is safe for concurrent use.
type Matcher struct {
	version string
	entries []entry
}

// NewMatcher compiles a taxonomy into a Matcher.
func NewMatcher(t *Taxonomy) (*Matcher, error) {
	m := &Matcher{version: t.Version, entries: make([]entry, 0, len(t.Skills))}
	for _, s := range t.Skills {
		aliases := slices.Clone(s.Aliases)
		// Longest alias first so alternation prefers "node.js" over "node".
		sort.SliceStable(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })
		quoted := make([]string, len(aliases))
		for i, a := range aliases {
			quoted[i] = regexp.QuoteMeta(strings.TrimSpace(a))
		}
		re, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile patterns for %q: %w", s.Name, err)
		}
		m.entries = append(m.entries, entry{skill: s, pattern: re})
	}
	return m, nil
}

func mustNewMatcher(data []byte) *Matcher {
	t, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	m, err := NewMatcher(t)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return m
}

// Default returns the matcher built from the embedded taxonomy.
func Default() *Matcher {
	return defaultMatcher
}

// MatchSkills runs the default matcher over text.
func MatchSkills(text string) []types.SkillMatch {
	return defaultMatcher.Match(text)
}

// Version identifies the taxonomy revision.
func (m *Matcher) Version() string {
	return m.version
}

// Size returns the number of catalog skills.
func (m *Matcher) Size() int {
	return len(m.entries)
}

// Match returns one SkillMatch per skill mentioned in text, ordered by
// confidence, then frequency, then name.
func (m *Matcher) Match(text string) []types.SkillMatch {
	matches := []types.SkillMatch{}
	if strings.TrimSpace(text) == "" {
		return matches
	}

	for _, e := range m.entries {
		freq := countMatches(e.pattern, text)
		if freq == 0 {
			continue
		}
		matches = append(matches, types.SkillMatch{
			Name:            e.skill.Name,
			Category:        e.skill.Category,
			ConfidenceLevel: Confidence(freq),
			Frequency:       freq,
			InDemand:        e.skill.InDemand,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.ConfidenceLevel != b.ConfidenceLevel {
			return a.ConfidenceLevel > b.ConfidenceLevel
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Name < b.Name
	})
	return matches
}

// Confidence maps a mention count to a 0-100 confidence level.
func Confidence(frequency int) int {
	if frequency <= 0 {
		return 0
	}
	return min(100, 40+20*frequency)
}

func countMatches(re *regexp.Regexp, text string) int {
	count := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if onBoundary(text, loc[0], loc[1]) {
			count++
		}
	}
	return count
}

// onBoundary reports whether text[start:end] stands alone as a token.
// A dot before the match ("node.js" for "js") or a dot joining the next word
// ("vue.js" for "vue") does not count as a boundary.
func onBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) || prev == '.' || prev == '@' {
			return false
		}
	}
	if end < len(text) {
		next, size := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) || next == '+' || next == '#' {
			return false
		}
		if next == '.' && end+size < len(text) {
			after, _ := utf8.DecodeRuneInString(text[end+size:])
			if isWordRune(after) {
				return false
			}
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
