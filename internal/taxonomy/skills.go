package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// EscoOccupation is one row of the ESCO occupations dataset.
type EscoOccupation struct {
	ConceptURI string
	IscoGroup  string
}

// EscoRelation is one row of the ESCO occupation-skill relation dataset.
type EscoRelation struct {
	OccupationURI string
	SkillURI      string
	RelationType  string
}

// SkillUniverse maps an ISCO-08 group to the deduplicated set of ESCO skill
// identifiers associated with any occupation in that group.
type SkillUniverse map[string][]string

// BuildSkillUniverse inner-joins occupations against relations on the
// occupation concept URI, keeps relations whose type equals relationType
// (no-op when relationType is empty or the column was absent upstream),
// groups by ISCO group and unions skill URIs per group. The join fans out
// many-to-many; the result per group is a set.
func BuildSkillUniverse(occupations []EscoOccupation, relations []EscoRelation, relationType string) SkillUniverse {
	skillsByOcc := make(map[string][]string)
	for _, rel := range relations {
		if rel.OccupationURI == "" || rel.SkillURI == "" {
			continue
		}
		if relationType != "" && rel.RelationType != "" && rel.RelationType != relationType {
			continue
		}
		skillsByOcc[rel.OccupationURI] = append(skillsByOcc[rel.OccupationURI], rel.SkillURI)
	}

	sets := make(map[string]map[string]struct{})
	for _, occ := range occupations {
		if occ.IscoGroup == "" {
			continue
		}
		skills, ok := skillsByOcc[occ.ConceptURI]
		if !ok {
			continue
		}
		set := sets[occ.IscoGroup]
		if set == nil {
			set = make(map[string]struct{})
			sets[occ.IscoGroup] = set
		}
		for _, s := range skills {
			set[s] = struct{}{}
		}
	}

	universe := make(SkillUniverse, len(sets))
	for group, set := range sets {
		skills := make([]string, 0, len(set))
		for s := range set {
			skills = append(skills, s)
		}
		sort.Strings(skills)
		universe[group] = skills
	}
	return universe
}

// Skills returns the skill set for an ISCO group; nil when unmapped.
func (u SkillUniverse) Skills(iscoGroup string) []string {
	if u == nil {
		return nil
	}
	return u[strings.TrimSpace(iscoGroup)]
}

// LoadEscoOccupations reads the ESCO occupations.csv export. Only the
// conceptUri and iscoGroup columns are used; rows without an ISCO group are
// skipped.
func LoadEscoOccupations(path string) ([]EscoOccupation, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	uriCol, ok1 := header["concepturi"]
	iscoCol, ok2 := header["iscogroup"]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("esco occupations %s: missing conceptUri/iscoGroup columns", path)
	}

	out := make([]EscoOccupation, 0, len(rows))
	for _, row := range rows {
		occ := EscoOccupation{
			ConceptURI: cellAt(row, uriCol),
			IscoGroup:  cellAt(row, iscoCol),
		}
		if occ.IscoGroup == "" {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

// LoadEscoRelations reads the ESCO occupations_skills.csv export. The
// relationType column is optional; when absent the filter in
// BuildSkillUniverse becomes a no-op.
func LoadEscoRelations(path string) ([]EscoRelation, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	occCol, ok1 := header["occupationuri"]
	skillCol, ok2 := header["skilluri"]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("esco relations %s: missing occupationUri/skillUri columns", path)
	}
	relCol, hasRel := header["relationtype"]

	out := make([]EscoRelation, 0, len(rows))
	for _, row := range rows {
		rel := EscoRelation{
			OccupationURI: cellAt(row, occCol),
			SkillURI:      cellAt(row, skillCol),
		}
		if hasRel {
			rel.RelationType = cellAt(row, relCol)
		}
		out = append(out, rel)
	}
	return out, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	headerRow, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, cell := range headerRow {
		header[strings.ToLower(strings.TrimSpace(cell))] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}
