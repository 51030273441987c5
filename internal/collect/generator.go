// Package collect produces raw job offers: a deterministic synthetic
// generator for offline runs and an Adzuna API client for real data.
package collect

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

var (
	companies = []string{
		"TechSolutions", "DataMind", "CodeCraft", "DigitalWave", "InnovateTech",
		"ByteLogic", "CloudNative", "DevFusion", "ElectronMinds", "FutureCode",
		"GlobalTech", "HyperData", "IntelliSoft", "JavaPros", "KernelLabs",
		"LogicWorks", "MobileFirst", "NetArchitects", "OptimizeIT", "PixelWave",
		"QuantumSystems", "ReactMasters", "SecureTech", "TensorMinds", "UXPioneer",
		"VirtualVision", "WebWizards", "XenonData", "YieldTech", "ZenithCode",
	}

	cities = []string{
		"Madrid", "Barcelona", "Valencia", "Sevilla", "Bilbao",
		"Málaga", "Zaragoza", "Alicante", "Murcia", "Las Palmas",
		"Remoto", "Híbrido (Madrid)", "Híbrido (Barcelona)", "Híbrido (Valencia)",
		"Remoto (Europa)", "Remoto (España)",
	}

	contractKinds = []string{
		"Indefinido", "Temporal", "Prácticas", "Formativo", "Freelance",
		"Por obra y servicio", "Mercantil", "Temporal con posibilidad de indefinido",
	}

	schedules = []string{
		"Completa", "Parcial (mañanas)", "Parcial (tardes)", "Por horas",
		"Intensiva", "Flexible", "Turnos rotativos", "Fin de semana",
	}

	languages = []string{
		"Python", "JavaScript", "Java", "C#", "C++", "PHP", "Go", "Ruby",
		"Swift", "Kotlin", "TypeScript", "Scala", "Rust", "R", "Dart",
	}

	frameworks = []string{
		"React", "Angular", "Vue.js", "Django", "Spring Boot", "Laravel",
		"Flask", "Express.js", "ASP.NET", "Ruby on Rails", "Flutter", "Next.js",
		"Symfony", "FastAPI", "TensorFlow", "PyTorch", "Pandas",
	}

	databases = []string{
		"MySQL", "PostgreSQL", "MongoDB", "SQL Server", "Oracle", "Redis",
		"Cassandra", "Elasticsearch", "SQLite", "DynamoDB", "Firebase",
		"Neo4j", "MariaDB", "Couchbase", "InfluxDB", "Snowflake", "BigQuery",
	}

	tools = []string{
		"Docker", "Kubernetes", "Git", "Jenkins", "GitHub Actions", "AWS",
		"Azure", "Google Cloud", "Terraform", "Ansible", "Jira", "Confluence",
		"Prometheus", "Grafana", "ELK Stack", "Postman", "SonarQube",
	}

	titleTemplates = []string{
		"Desarrollador/a {lenguaje} {nivel}",
		"Programador/a {lenguaje} {nivel}",
		"Ingeniero/a de Software {nivel}",
		"Arquitecto/a de Software {nivel}",
		"Desarrollador/a {framework} {nivel}",
		"Ingeniero/a DevOps {nivel}",
		"Data Scientist {nivel}",
		"Data Engineer {nivel}",
		"Full Stack Developer {nivel}",
		"Frontend Developer {nivel}",
		"Backend Developer {nivel}",
		"Mobile Developer {lenguaje} {nivel}",
		"QA Engineer {nivel}",
		"Machine Learning Engineer {nivel}",
		"Cloud Architect {nivel}",
		"Technical Lead {nivel}",
	}

	levels = []string{"Junior", "Semisenior", "Senior", "Lead", "Staff", "Principal"}

	// Approximate annual gross ranges in euros per seniority level.
	salaryBands = map[string][2]float64{
		"Junior":     {18000, 28000},
		"Semisenior": {28000, 38000},
		"Senior":     {38000, 60000},
		"Lead":       {50000, 75000},
		"Staff":      {65000, 85000},
		"Principal":  {80000, 120000},
	}

	experienceByLevel = map[string]string{
		"Junior":     "0-2 años",
		"Semisenior": "2-4 años",
		"Senior":     "4-8 años",
		"Lead":       "8-12 años",
		"Staff":      "10-15 años",
		"Principal":  "15+ años",
	}
)

// SyntheticColumns is the column order of the simulated raw CSV.
var SyntheticColumns = []string{
	"titulo", "empresa", "ubicacion", "fecha_publicacion", "tipo_contrato",
	"jornada", "salario", "salario_min", "salario_max", "experiencia",
	"nivel", "descripcion", "tecnologias",
}

// Generator emits simulated Spanish tech job offers. Output is fully
// determined by the seed and the reference time.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

func NewGenerator(seed int64, now time.Time) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: now}
}

// Offers generates n raw offers with the column layout of the simulated
// source: Spanish headers, salary as a formatted expression plus
// explicit numeric bounds.
func (g *Generator) Offers(n int) []normalize.RawRecord {
	offers := make([]normalize.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		offers = append(offers, g.offer())
	}

	zap.L().Info("collect: generated synthetic offers", zap.Int("count", n))
	return offers
}

func (g *Generator) offer() normalize.RawRecord {
	level := levels[g.rng.Intn(len(levels))]
	techs := g.requirements()

	band := salaryBands[level]
	lo := roundThousands(band[0] + g.rng.Float64()*4000 - 2000)
	hi := roundThousands(band[1] + g.rng.Float64()*4000 - 2000)
	if lo >= hi {
		hi = lo + 5000
	}

	posted := g.now.AddDate(0, 0, -g.rng.Intn(31))

	return normalize.RawRecord{
		"titulo":            g.title(level, techs[0]),
		"empresa":           companies[g.rng.Intn(len(companies))],
		"ubicacion":         cities[g.rng.Intn(len(cities))],
		"fecha_publicacion": posted.Format("02/01/2006"),
		"tipo_contrato":     contractKinds[g.rng.Intn(len(contractKinds))],
		"jornada":           schedules[g.rng.Intn(len(schedules))],
		"salario":           fmt.Sprintf("%.0f - %.0f € Bruto/año", lo, hi),
		"salario_min":       fmt.Sprintf("%.0f", lo),
		"salario_max":       fmt.Sprintf("%.0f", hi),
		"experiencia":       experienceByLevel[level],
		"nivel":             level,
		"descripcion":       g.description(level, techs),
		"tecnologias":       strings.Join(techs, ", "),
	}
}

// requirements picks a primary language plus a handful of frameworks,
// databases and tools, without duplicates.
func (g *Generator) requirements() []string {
	techs := []string{languages[g.rng.Intn(len(languages))]}
	add := func(pool []string, count int) {
		for i := 0; i < count; i++ {
			candidate := pool[g.rng.Intn(len(pool))]
			if !slices.Contains(techs, candidate) {
				techs = append(techs, candidate)
			}
		}
	}
	add(frameworks, 1+g.rng.Intn(3))
	add(databases, 1+g.rng.Intn(2))
	add(tools, 1+g.rng.Intn(3))
	return techs
}

func (g *Generator) title(level, language string) string {
	t := titleTemplates[g.rng.Intn(len(titleTemplates))]
	t = strings.ReplaceAll(t, "{lenguaje}", language)
	t = strings.ReplaceAll(t, "{framework}", frameworks[g.rng.Intn(len(frameworks))])
	return strings.ReplaceAll(t, "{nivel}", level)
}

func (g *Generator) description(level string, techs []string) string {
	head := len(techs)
	if head > 3 {
		head = 3
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Buscamos un %s desarrollador/a con experiencia en %s para unirse a nuestro equipo.\n\n",
		level, strings.Join(techs[:head], ", "))
	b.WriteString("Requisitos:\n")
	fmt.Fprintf(&b, "- Experiencia de %s con %s\n", experienceByLevel[level], techs[0])
	for _, tech := range techs[1:] {
		fmt.Fprintf(&b, "- Conocimientos de %s\n", tech)
	}
	return b.String()
}

func roundThousands(v float64) float64 {
	return float64(int((v+500)/1000)) * 1000
}
