package reviews

import (
	"fmt"
	"strings"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/enrich"
	"grantreview-backend/internal/sections"
)

// previewLimit bounds how much raw payload text is echoed into a
// parse-error context.
const previewLimit = 500

var categoryOrder = []struct {
	key   string
	title string
}{
	{sections.ProjectFundamentals, "Project Fundamentals"},
	{sections.TechnicalInfrastructure, "Technical Infrastructure"},
	{sections.MarketInnovation, "Market & Innovation"},
	{sections.PublicGoodImpact, "Public Good Impact"},
	{sections.TeamCapability, "Team Capability"},
	{sections.ImplementationPlan, "Implementation Plan"},
}

var fieldOrder = map[string][]struct {
	key   string
	title string
}{
	sections.ProjectFundamentals: {
		{"name", "Company/Project Name"},
		{"description", "Project Description"},
		{"website", "Website"},
		{"location", "Location"},
		{"contact", "Contact"},
		{"solana_integration", "Solana Integration"},
	},
	sections.TechnicalInfrastructure: {
		{"github_repository", "GitHub Repository"},
		{"technical_architecture", "Technical Architecture"},
		{"development_progress", "Development Progress"},
		{"open_source", "Open Source"},
	},
	sections.MarketInnovation: {
		{"problem_solution", "Problem/Solution"},
		{"market_opportunity", "Market Opportunity"},
		{"technical_innovation", "Technical Innovation"},
	},
	sections.PublicGoodImpact: {
		{"community_benefit", "Community Benefit"},
		{"ecosystem_contribution", "Ecosystem Contribution"},
		{"accessibility", "Accessibility"},
	},
	sections.TeamCapability: {
		{"technical_expertise", "Technical Expertise"},
		{"track_record", "Track Record"},
		{"team", "Team"},
	},
	sections.ImplementationPlan: {
		{"budget_allocation", "Budget Allocation"},
		{"development_roadmap", "Development Roadmap"},
		{"success_metrics", "Success Metrics"},
	},
}

const evaluationCriteria = `Evaluate the application against these criteria:
1. Technical Feasibility
2. Team Capability
3. Market Impact
4. Public Good Value
5. Resource Requirements`

// BuildNewApplication assembles the evaluation context for a freshly
// received application: the structured sections, the settled enrichment
// outcomes, and the evaluation criteria. Failed enrichments are rendered
// as explicit unavailability notes rather than omitted, so the reviewer
// never mistakes a lookup failure for an empty field.
func BuildNewApplication(rec *application.Record, secs sections.Sections, results []enrich.Result) string {
	var b strings.Builder
	b.WriteString("New grant application for review.\n\n")

	if rec != nil {
		fmt.Fprintf(&b, "Applicant: %s\n", rec.UserID())
		if rec.ID != "" {
			fmt.Fprintf(&b, "Application ID: %s\n", rec.ID)
		}
		if date, ok := rec.MetaData["application_date"].(string); ok && date != "" {
			fmt.Fprintf(&b, "Application Date: %s\n", date)
		}
		if rec.Content != "" {
			b.WriteString("\n=== Application Content ===\n")
			b.WriteString(rec.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("=== Application Sections ===\n")
	for _, cat := range categoryOrder {
		fmt.Fprintf(&b, "\n## %s\n", cat.title)
		for _, f := range fieldOrder[cat.key] {
			v := secs.Get(cat.key, f.key)
			if v == "" {
				v = "(not provided)"
			}
			fmt.Fprintf(&b, "%s: %s\n", f.title, v)
		}
	}

	b.WriteString("\n=== External Analysis ===\n")
	for _, res := range results {
		if res.OK {
			fmt.Fprintf(&b, "\n[%s]\n%s\n", res.Adapter, res.Summary)
		} else {
			fmt.Fprintf(&b, "\n[%s]\nanalysis unavailable: %s\n", res.Adapter, res.Reason)
		}
	}

	b.WriteString("\n")
	b.WriteString(evaluationCriteria)
	return b.String()
}

// BuildFollowUp assembles the context for a follow-up question. Prior
// reviews are listed newest first, so the reviewer grounds its answer in
// the latest completed evaluation.
func BuildFollowUp(history []Record, query string) string {
	var b strings.Builder
	b.WriteString("Follow-up question about a previously reviewed application.\n\n")

	if len(history) == 0 {
		b.WriteString("No prior reviews are on record for this applicant.\n")
	} else {
		b.WriteString("=== Prior Reviews (newest first) ===\n")
		for i, rec := range history {
			fmt.Fprintf(&b, "\n--- Review %d (%s) ---\n%s\n", i+1, rec.CreatedAt.Format("2006-01-02"), rec.Content)
		}
	}

	b.WriteString("\n=== Question ===\n")
	b.WriteString(query)
	return b.String()
}

// BuildParseError assembles the context used when an application payload
// could not be parsed. The reviewer is still consulted so the applicant
// receives guidance, but only a bounded preview of the raw payload is
// included.
func BuildParseError(raw string, parseErr error) string {
	preview := raw
	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "..."
	}

	var b strings.Builder
	b.WriteString("A grant application was received but could not be parsed.\n\n")
	fmt.Fprintf(&b, "Parse error: %v\n\n", parseErr)
	b.WriteString("Payload preview:\n")
	b.WriteString(preview)
	b.WriteString("\n\nExplain what is malformed and how the applicant should resubmit.")
	return b.String()
}
