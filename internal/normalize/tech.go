package normalize

import (
	"regexp"
	"strings"
)

// DefaultVocabulary is the fixed set of tracked technologies.
// Technologies outside this list are ignored everywhere, so the
// feature schema stays stable across runs.
var DefaultVocabulary = []string{
	"Python", "JavaScript", "TypeScript", "Java", "C#", "C++", "PHP",
	"Go", "Ruby", "Swift", "Kotlin", "Scala", "Rust",
	"React", "Angular", "Vue.js", "Django", "Spring Boot", "Laravel",
	"Flask", "Node.js", "FastAPI", ".NET",
	"MySQL", "PostgreSQL", "MongoDB", "Redis", "Elasticsearch",
	"SQL Server", "Oracle", "SQLite",
	"Docker", "Kubernetes", "Git", "Jenkins", "Terraform",
	"AWS", "Azure", "Google Cloud",
}

// TechMatcher finds tracked-vocabulary mentions in free text.
type TechMatcher struct {
	vocab    []string
	patterns []*regexp.Regexp
}

// NewTechMatcher compiles one word-boundary pattern per vocabulary
// entry. Symbol-bearing names (C#, C++, .NET) need custom boundaries
// because \b does not work next to punctuation.
func NewTechMatcher(vocab []string) *TechMatcher {
	m := &TechMatcher{vocab: vocab}
	for _, tech := range vocab {
		m.patterns = append(m.patterns, techPattern(tech))
	}
	return m
}

// Match returns the vocabulary entries mentioned in any of the given
// texts, in vocabulary order, de-duplicated.
func (m *TechMatcher) Match(texts ...string) []string {
	joined := strings.Join(texts, "\n")
	var found []string
	for i, pat := range m.patterns {
		if pat.MatchString(joined) {
			found = append(found, m.vocab[i])
		}
	}
	return found
}

// Vocabulary returns the matcher's vocabulary in its fixed order.
func (m *TechMatcher) Vocabulary() []string {
	return m.vocab
}

func techPattern(tech string) *regexp.Regexp {
	// No letter, digit, or tech-name symbol may directly touch the
	// token on either side, so "Golang" does not match "Go" and
	// "C#" does not match inside "C#minor".
	quoted := regexp.QuoteMeta(tech)
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9+#.])` + quoted + `(?:$|[^a-z0-9+#])`)
}
