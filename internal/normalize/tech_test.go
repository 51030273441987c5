package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSimpleMention(t *testing.T) {
	m := NewTechMatcher(DefaultVocabulary)

	found := m.Match("Buscamos desarrollador/a Python con Django y PostgreSQL")
	assert.Equal(t, []string{"Python", "Django", "PostgreSQL"}, found)
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := NewTechMatcher([]string{"Python"})

	assert.Equal(t, []string{"Python"}, m.Match("experiencia con PYTHON"))
}

func TestMatchWordBoundary(t *testing.T) {
	m := NewTechMatcher([]string{"Go", "Java"})

	assert.Empty(t, m.Match("Golang y JavaScript"))
	assert.Equal(t, []string{"Go", "Java"}, m.Match("Go y Java"))
}

func TestMatchSymbolNames(t *testing.T) {
	m := NewTechMatcher([]string{"C#", "C++", ".NET"})

	found := m.Match("Perfil C# / .NET, valorable C++")
	assert.Equal(t, []string{"C#", "C++", ".NET"}, found)
}

func TestMatchAcrossTexts(t *testing.T) {
	m := NewTechMatcher([]string{"React", "AWS"})

	found := m.Match("Frontend Developer React", "Se valora AWS")
	assert.Equal(t, []string{"React", "AWS"}, found)
}

func TestMatchOutOfVocabularyIgnored(t *testing.T) {
	m := NewTechMatcher([]string{"Python"})

	assert.Empty(t, m.Match("COBOL y Fortran"))
}

func TestMatchDeduplicates(t *testing.T) {
	m := NewTechMatcher([]string{"Python"})

	assert.Equal(t, []string{"Python"}, m.Match("Python, Python y más Python"))
}
