package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(t *testing.T, text string) []string {
	t.Helper()
	var out []string
	for _, m := range MatchSkills(text) {
		out = append(out, m.Name)
	}
	return out
}

func TestEmbeddedTaxonomyLoads(t *testing.T) {
	m := Default()
	require.NotNil(t, m)
	assert.NotEmpty(t, m.Version())
	assert.Greater(t, m.Size(), 40)
}

func TestMatchSkillsOrdering(t *testing.T) {
	got := MatchSkills("Python Python Azure")
	require.Len(t, got, 2)

	assert.Equal(t, "Python", got[0].Name)
	assert.Equal(t, 2, got[0].Frequency)
	assert.Equal(t, 80, got[0].ConfidenceLevel)

	assert.Equal(t, "Azure", got[1].Name)
	assert.Equal(t, 1, got[1].Frequency)
	assert.Equal(t, 60, got[1].ConfidenceLevel)
}

func TestMatchSkillsTieBreaksByName(t *testing.T) {
	got := MatchSkills("Docker, Azure, Python")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Azure", "Docker", "Python"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestMatchSkillsAliasesCollapse(t *testing.T) {
	got := MatchSkills("Built SPAs in JavaScript and plain JS, later ECMAScript modules.")
	require.Len(t, got, 1)
	assert.Equal(t, "JavaScript", got[0].Name)
	assert.Equal(t, 3, got[0].Frequency)
	assert.Equal(t, 100, got[0].ConfidenceLevel)
}

func TestMatchSkillsWordBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "java is not found inside javascript",
			text:     "JavaScript developer",
			expected: []string{"JavaScript"},
		},
		{
			name:     "sql inside postgresql",
			text:     "PostgreSQL and MySQL",
			expected: []string{"MySQL", "PostgreSQL"},
		},
		{
			name:     "symbol aliases",
			text:     "C++ and C# services on .NET",
			expected: []string{".NET", "C#", "C++"},
		},
		{
			name:     "node.js does not count as js",
			text:     "APIs in Node.js",
			expected: []string{"Node.js"},
		},
		{
			name:     "case insensitive",
			text:     "KUBERNETES and kubernetes and K8s",
			expected: []string{"Kubernetes"},
		},
		{
			name:     "email domain is not a skill",
			text:     "jane@python.org",
			expected: nil,
		},
		{
			name:     "sentence punctuation is a boundary",
			text:     "I write Rust.",
			expected: []string{"Rust"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(t, tt.text))
		})
	}
}

func TestMatchSkillsEmpty(t *testing.T) {
	got := MatchSkills("")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, MatchSkills("nothing relevant here at all"))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		freq     int
		expected int
	}{
		{0, 0},
		{1, 60},
		{2, 80},
		{3, 100},
		{10, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Confidence(tt.freq), "frequency %d", tt.freq)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	text := "Go developer using golang, Docker, docker, AWS, Terraform, Python and React."
	first := MatchSkills(text)
	for range 5 {
		assert.Equal(t, first, MatchSkills(text))
	}
}

func TestParseRejectsInvalidTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: `version = "x"`},
		{name: "duplicate", doc: `
[[skill]]
name = "Go"
aliases = ["golang"]
[[skill]]
name = "go"
aliases = ["go"]
`},
		{name: "no aliases", doc: `
[[skill]]
name = "Go"
`},
		{name: "bad toml", doc: `[[skill`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestCustomTaxonomy(t *testing.T) {
	tax, err := Parse([]byte(`
version = "test"
[[skill]]
name = "Widgets"
category = "Things"
aliases = ["widgets", "widget"]
in_demand = true
`))
	require.NoError(t, err)

	m, err := NewMatcher(tax)
	require.NoError(t, err)

	got := m.Match("One widget, two widgets.")
	require.Len(t, got, 1)
	assert.Equal(t, "Widgets", got[0].Name)
	assert.Equal(t, "Things", got[0].Category)
	assert.Equal(t, 2, got[0].Frequency)
	assert.True(t, got[0].InDemand)
}
