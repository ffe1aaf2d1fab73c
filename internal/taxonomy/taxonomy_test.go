package taxonomy

import "testing"

func TestResolveIsTotal(t *testing.T) {
	regions := Regions()

	if got := regions.Resolve("SE11"); got != "Stockholm" {
		t.Fatalf("expected Stockholm, got %q", got)
	}
	if got := regions.Resolve("XX99"); got != Unknown {
		t.Fatalf("unmapped code must resolve to %q, got %q", Unknown, got)
	}
	if got := regions.Resolve(""); got != Unknown {
		t.Fatalf("empty code must resolve to %q, got %q", Unknown, got)
	}
	if got := regions.Resolve("  SE11  "); got != "Stockholm" {
		t.Fatalf("resolve must trim whitespace, got %q", got)
	}
}

func TestCrosswalkResolve(t *testing.T) {
	cw := NewCrosswalk(map[string][]string{
		"2512": {"2512"},
		"2511": {"2511", "2519"},
	})

	if got := cw.Resolve("2511"); len(got) != 2 {
		t.Fatalf("expected 2 ISCO codes, got %v", got)
	}
	if got := cw.Resolve("9999"); got != nil {
		t.Fatalf("unresolved SSYK must return nil, got %v", got)
	}

	var nilCW *Crosswalk
	if got := nilCW.Resolve("2511"); got != nil {
		t.Fatalf("nil crosswalk must degrade to nil, got %v", got)
	}
}

func TestBuildSkillUniverseDedupes(t *testing.T) {
	occs := []EscoOccupation{
		{ConceptURI: "occ/a", IscoGroup: "2512"},
		{ConceptURI: "occ/b", IscoGroup: "2512"},
	}
	rels := []EscoRelation{
		{OccupationURI: "occ/a", SkillURI: "skill/go", RelationType: "essential"},
		{OccupationURI: "occ/a", SkillURI: "skill/go", RelationType: "essential"},
		{OccupationURI: "occ/b", SkillURI: "skill/go", RelationType: "essential"},
		{OccupationURI: "occ/b", SkillURI: "skill/sql", RelationType: "essential"},
		{OccupationURI: "occ/b", SkillURI: "skill/excel", RelationType: "optional"},
	}

	universe := BuildSkillUniverse(occs, rels, "essential")

	skills := universe.Skills("2512")
	if len(skills) != 2 {
		t.Fatalf("expected deduplicated set of 2 skills, got %v", skills)
	}
	if skills[0] != "skill/go" || skills[1] != "skill/sql" {
		t.Fatalf("unexpected skill set %v", skills)
	}
}

func TestBuildSkillUniverseFilterNoOpWhenColumnAbsent(t *testing.T) {
	occs := []EscoOccupation{{ConceptURI: "occ/a", IscoGroup: "2121"}}
	// relations loaded from a dataset without a relationType column
	rels := []EscoRelation{
		{OccupationURI: "occ/a", SkillURI: "skill/statistics"},
	}

	universe := BuildSkillUniverse(occs, rels, "essential")
	if got := universe.Skills("2121"); len(got) != 1 {
		t.Fatalf("filter must be a no-op without relation types, got %v", got)
	}
}

func TestBuildSkillUniverseUnjoinedOccupation(t *testing.T) {
	occs := []EscoOccupation{{ConceptURI: "occ/lonely", IscoGroup: "2173"}}
	universe := BuildSkillUniverse(occs, nil, "essential")

	if got := universe.Skills("2173"); got != nil {
		t.Fatalf("inner join must exclude occupations without relations, got %v", got)
	}
}
