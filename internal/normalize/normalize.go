package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Drop reasons reported in Report.Reasons.
const (
	ReasonMissingTitle = "missing_title"
)

// Report summarizes one normalization pass. Kept + Dropped equals the
// number of raw rows seen.
type Report struct {
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
	NoTech  int            `json:"no_tech"` // kept but flagged: no tracked technology found
	Reasons map[string]int `json:"reasons,omitempty"`
}

func (r *Report) drop(reason string) {
	r.Dropped++
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Reasons[reason]++
}

// Normalizer turns raw rows into validated JobRecords.
type Normalizer struct {
	locs  *LocationTable
	techs *TechMatcher
}

// New builds a Normalizer over the default location table and
// technology vocabulary.
func New() *Normalizer {
	return &Normalizer{
		locs:  NewLocationTable(DefaultLocations),
		techs: NewTechMatcher(DefaultVocabulary),
	}
}

// NewWith builds a Normalizer over explicit tables, for callers that
// need a reduced vocabulary.
func NewWith(locs *LocationTable, techs *TechMatcher) *Normalizer {
	return &Normalizer{locs: locs, techs: techs}
}

// Run normalizes a batch of raw rows through the given adapter.
// Malformed rows are dropped and counted, never fatal.
func (n *Normalizer) Run(rows []RawRecord, adapter Adapter) ([]model.JobRecord, Report) {
	var out []model.JobRecord
	var rep Report

	for i, raw := range rows {
		rec, reason := n.One(adapter(raw))
		if reason != "" {
			zap.L().Debug("normalize: dropped record",
				zap.Int("index", i),
				zap.String("reason", reason),
			)
			rep.drop(reason)
			continue
		}
		if len(rec.Technologies) == 0 {
			rep.NoTech++
		}
		rep.Kept++
		out = append(out, rec)
	}

	zap.L().Info("normalize: batch complete",
		zap.Int("kept", rep.Kept),
		zap.Int("dropped", rep.Dropped),
		zap.Int("no_tech", rep.NoTech),
	)
	return out, rep
}

// One normalizes a single record. A non-empty reason means the record
// was rejected.
func (n *Normalizer) One(f Fields) (model.JobRecord, string) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return model.JobRecord{}, ReasonMissingTitle
	}

	rec := model.JobRecord{
		Title:    title,
		Company:  strings.TrimSpace(f.Company),
		Location: strings.TrimSpace(f.Location),
		Source:   f.Source,
	}

	rec.SalaryMin, rec.SalaryMax = parseSalaryFields(f)
	rec.LocationCat, rec.Remote = n.locs.Lookup(f.Location)
	// The schedule can carry a remote signal the location lacks; an
	// explicit location verdict (remote or hybrid) wins.
	if mode := scheduleRemoteMode(f.Schedule); mode != model.RemoteUnknown &&
		(rec.Remote == model.RemoteOnsite || rec.Remote == model.RemoteUnknown) {
		rec.Remote = mode
	}
	rec.Contract = parseContract(f.Contract, f.Schedule)
	rec.Experience, rec.ExpYears = parseExperience(f.Level, f.Experience, title)
	rec.Technologies = model.NewTechSet(n.techs.Match(f.Techs, title, f.Description)...)
	rec.PostedDate = parseDate(f.Posted)

	return rec, ""
}

// parseSalaryFields prefers explicit numeric bounds, falling back to
// the free-form salary expression. Reversed bounds are swapped so the
// min <= max invariant always holds.
func parseSalaryFields(f Fields) (*float64, *float64) {
	lo := ParseBound(f.SalaryMin)
	hi := ParseBound(f.SalaryMax)
	if lo == nil && hi == nil {
		lo, hi = ParseSalary(f.Salary)
	}
	if lo != nil && hi != nil && *lo > *hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

func parseContract(contract, schedule string) model.ContractType {
	c := Fold(contract)
	s := Fold(schedule)

	switch {
	case strings.Contains(c, "practica") || strings.Contains(c, "formativo") || strings.Contains(c, "internship") || strings.Contains(c, "becario"):
		return model.ContractInternship
	case strings.Contains(s, "parcial") || strings.Contains(s, "part"):
		return model.ContractPartTime
	case strings.Contains(c, "temporal") || strings.Contains(c, "freelance") || strings.Contains(c, "mercantil") || strings.Contains(c, "obra") || strings.Contains(c, "contract"):
		return model.ContractContract
	case strings.Contains(c, "indefinido") || strings.Contains(c, "permanent") || strings.Contains(s, "completa") || strings.Contains(s, "full"):
		return model.ContractFullTime
	default:
		return model.ContractUnknown
	}
}

// CanonicalContract maps contract wording onto the normalized bucket.
// Canonical bucket names pass through; free text (Spanish or English)
// goes through the same mapping normalization applies. The second
// result is false when the text matches no bucket.
func CanonicalContract(text string) (model.ContractType, bool) {
	switch t := model.ContractType(strings.TrimSpace(strings.ToLower(text))); t {
	case "", model.ContractUnknown:
		return model.ContractUnknown, true
	case model.ContractFullTime, model.ContractPartTime,
		model.ContractContract, model.ContractInternship:
		return t, true
	}
	if c := parseContract(text, text); c != model.ContractUnknown {
		return c, true
	}
	return model.ContractUnknown, false
}

// CanonicalExperience maps seniority wording onto the normalized
// bucket, accepting both canonical names and free text.
func CanonicalExperience(text string) (model.ExperienceLevel, bool) {
	switch t := model.ExperienceLevel(strings.TrimSpace(strings.ToLower(text))); t {
	case "", model.ExperienceUnknown:
		return model.ExperienceUnknown, true
	case model.ExperienceJunior, model.ExperienceMid, model.ExperienceSenior:
		return t, true
	}
	if lvl := levelBucket(text); lvl != model.ExperienceUnknown {
		return lvl, true
	}
	return model.ExperienceUnknown, false
}

func scheduleRemoteMode(schedule string) model.RemoteMode {
	s := Fold(schedule)
	switch {
	case strings.Contains(s, "remoto") || strings.Contains(s, "remote"):
		return model.RemoteRemote
	case strings.Contains(s, "hibrido") || strings.Contains(s, "hybrid"):
		return model.RemoteHybrid
	default:
		return model.RemoteUnknown
	}
}

var yearsRangeRe = regexp.MustCompile(`(\d+)\s*(?:-\s*(\d+))?\s*\+?\s*(?:años|anos|years?)`)

// parseExperience buckets seniority from the level field, the years
// requirement, or title keywords, in that priority order. Missing
// signal yields the unknown bucket, never a drop.
func parseExperience(level, experience, title string) (model.ExperienceLevel, *float64) {
	var years *float64
	if m := yearsRangeRe.FindStringSubmatch(Fold(experience)); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		mid := lo
		if m[2] != "" {
			hi, _ := strconv.ParseFloat(m[2], 64)
			mid = (lo + hi) / 2
		}
		years = &mid
	}

	if lvl := levelBucket(level); lvl != model.ExperienceUnknown {
		return lvl, years
	}
	if years != nil {
		return yearsBucket(*years), years
	}
	if lvl := levelBucket(title); lvl != model.ExperienceUnknown {
		return lvl, nil
	}
	return model.ExperienceUnknown, nil
}

func levelBucket(text string) model.ExperienceLevel {
	t := Fold(text)
	switch {
	case strings.Contains(t, "semisenior") || strings.Contains(t, "semi senior") || strings.Contains(t, "mid"):
		return model.ExperienceMid
	case strings.Contains(t, "senior") || strings.Contains(t, "lead") || strings.Contains(t, "staff") || strings.Contains(t, "principal") || strings.Contains(t, " sr"):
		return model.ExperienceSenior
	case strings.Contains(t, "junior") || strings.Contains(t, " jr") || strings.Contains(t, "trainee"):
		return model.ExperienceJunior
	default:
		return model.ExperienceUnknown
	}
}

func yearsBucket(years float64) model.ExperienceLevel {
	switch {
	case years < 2:
		return model.ExperienceJunior
	case years < 4:
		return model.ExperienceMid
	default:
		return model.ExperienceSenior
	}
}

var dateLayouts = []string{"02/01/2006", "2006-01-02", time.RFC3339}

func parseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
