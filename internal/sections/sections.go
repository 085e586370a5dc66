// Package sections extracts the labeled fields of a grant application
// document into a fixed nested map. Extraction is a pure function of the
// content: missing labels yield empty values, never missing keys.
package sections

import "strings"

// Top-level categories. Every Sections value carries all six.
const (
	ProjectFundamentals     = "project_fundamentals"
	TechnicalInfrastructure = "technical_infrastructure"
	MarketInnovation        = "market_innovation"
	PublicGoodImpact        = "public_good_impact"
	TeamCapability          = "team_capability"
	ImplementationPlan      = "implementation_plan"
)

// Sections maps category -> field -> extracted value.
type Sections map[string]map[string]string

type fieldSpec struct {
	category  string
	field     string
	label     string
	multiline bool
}

// One generic routine consumes this table instead of per-field string
// surgery. Order does not affect the result; fields are independent.
var fieldSpecs = []fieldSpec{
	{ProjectFundamentals, "name", "Company/Project Name:", false},
	{ProjectFundamentals, "description", "Project Description:", true},
	{ProjectFundamentals, "website", "Website:", false},
	{ProjectFundamentals, "location", "Location:", false},
	{ProjectFundamentals, "contact", "Contact:", false},
	{ProjectFundamentals, "solana_integration", "Solana Integration:", true},

	{TechnicalInfrastructure, "github_repository", "GitHub Repository:", false},
	{TechnicalInfrastructure, "technical_architecture", "Technical Architecture:", true},
	{TechnicalInfrastructure, "development_progress", "Development Progress:", true},
	{TechnicalInfrastructure, "open_source", "Open Source:", false},

	{MarketInnovation, "problem_solution", "Problem/Solution:", true},
	{MarketInnovation, "market_opportunity", "Market Opportunity:", true},
	{MarketInnovation, "technical_innovation", "Technical Innovation:", true},

	{PublicGoodImpact, "community_benefit", "Community Benefit:", true},
	{PublicGoodImpact, "ecosystem_contribution", "Ecosystem Contribution:", true},
	{PublicGoodImpact, "accessibility", "Accessibility:", true},

	{TeamCapability, "technical_expertise", "Technical Expertise:", true},
	{TeamCapability, "track_record", "Track Record:", true},
	{TeamCapability, "team", "Team:", true},

	{ImplementationPlan, "budget_allocation", "Budget Allocation:", true},
	{ImplementationPlan, "development_roadmap", "Development Roadmap:", true},
	{ImplementationPlan, "success_metrics", "Success Metrics:", true},
}

// New returns a fully-populated Sections with every field empty.
func New() Sections {
	s := make(Sections, 6)
	for _, spec := range fieldSpecs {
		cat, ok := s[spec.category]
		if !ok {
			cat = make(map[string]string)
			s[spec.category] = cat
		}
		cat[spec.field] = ""
	}
	return s
}

// Extract parses the labeled fields out of content. It never fails: a
// field that cannot be located stays at its empty default. Known
// limitation: label text appearing inside another field's value is not
// escaped; the first occurrence in the document wins.
func Extract(content string) Sections {
	s := New()
	for _, spec := range fieldSpecs {
		if v := extractField(content, spec.label, spec.multiline); v != "" {
			s[spec.category][spec.field] = v
		}
	}
	return s
}

// Get returns the value for category/field, or empty when absent.
func (s Sections) Get(category, field string) string {
	if cat, ok := s[category]; ok {
		return cat[field]
	}
	return ""
}

func extractField(content, label string, multiline bool) string {
	idx := strings.Index(content, label)
	if idx < 0 {
		return ""
	}
	rest := content[idx+len(label):]

	boundary := "\n"
	if multiline {
		boundary = "\n\n"
	}
	if end := strings.Index(rest, boundary); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
