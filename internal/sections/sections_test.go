package sections

import (
	"reflect"
	"testing"
)

const sampleApplication = `Company/Project Name: Acme
Project Description: A decentralized tooling suite
spanning two lines of text.

Website: https://acme.example
GitHub Repository: https://github.com/acme/tools
Problem/Solution: Developers lack audit tooling.
We provide automated checks.

Budget Allocation: 60% engineering, 40% audits
`

func TestExtractScenarioFields(t *testing.T) {
	s := Extract(sampleApplication)

	if got := s.Get(ProjectFundamentals, "name"); got != "Acme" {
		t.Fatalf("expected name Acme, got %q", got)
	}
	if got := s.Get(ProjectFundamentals, "website"); got != "https://acme.example" {
		t.Fatalf("unexpected website %q", got)
	}
	if got := s.Get(TechnicalInfrastructure, "github_repository"); got != "https://github.com/acme/tools" {
		t.Fatalf("unexpected repository %q", got)
	}
}

func TestExtractMultilineRunsToParagraphBoundary(t *testing.T) {
	s := Extract(sampleApplication)

	want := "A decentralized tooling suite\nspanning two lines of text."
	if got := s.Get(ProjectFundamentals, "description"); got != want {
		t.Fatalf("expected multi-line value %q, got %q", want, got)
	}
	want = "Developers lack audit tooling.\nWe provide automated checks."
	if got := s.Get(MarketInnovation, "problem_solution"); got != want {
		t.Fatalf("expected problem/solution %q, got %q", want, got)
	}
}

func TestExtractIdempotentAndShapeTotal(t *testing.T) {
	first := Extract(sampleApplication)
	second := Extract(sampleApplication)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected extraction to be idempotent")
	}

	for _, input := range []string{"", "no labels at all", sampleApplication} {
		s := Extract(input)
		categories := []string{
			ProjectFundamentals,
			TechnicalInfrastructure,
			MarketInnovation,
			PublicGoodImpact,
			TeamCapability,
			ImplementationPlan,
		}
		for _, cat := range categories {
			if _, ok := s[cat]; !ok {
				t.Fatalf("category %s missing for input %q", cat, input)
			}
		}
	}
}

func TestExtractMissingLabelStaysEmpty(t *testing.T) {
	s := Extract("Company/Project Name: Acme\n")
	if got := s.Get(TeamCapability, "track_record"); got != "" {
		t.Fatalf("expected empty track record, got %q", got)
	}
}

func TestExtractDuplicateLabelFirstWins(t *testing.T) {
	content := "Website: https://first.example\nWebsite: https://second.example\n"
	s := Extract(content)
	if got := s.Get(ProjectFundamentals, "website"); got != "https://first.example" {
		t.Fatalf("expected first occurrence to win, got %q", got)
	}
}

func TestExtractTrimsWhitespace(t *testing.T) {
	s := Extract("Location:    Lisbon, Portugal   \n")
	if got := s.Get(ProjectFundamentals, "location"); got != "Lisbon, Portugal" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
