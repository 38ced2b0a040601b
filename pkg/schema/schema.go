// Package schema holds the reference vocabulary the validator checks sample
// records against: the study visit codes, project codes and the allowed
// omics/tissue pairings. Values are matched by exact, case-sensitive string
// equality; callers are expected to supply canonical input.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

type Schema struct {
	Visits   []string            `yaml:"visits" json:"visits"`
	Projects []string            `yaml:"projects" json:"projects"`
	Omics    []string            `yaml:"omics" json:"omics"`
	Tissues  []string            `yaml:"tissues" json:"tissues"`
	PairsMap map[string][]string `yaml:"omics_tissue" json:"omics_tissue"`

	visitSet   map[string]struct{}
	projectSet map[string]struct{}
	omicsSet   map[string]struct{}
	tissueSet  map[string]struct{}
	pairSet    map[string]map[string]struct{}
}

type Pair struct {
	Omics  string `json:"omics"`
	Tissue string `json:"tissue"`
}

// Load reads a schema override file. An empty path selects the built-in
// COREA/PRISM deployment schema. Every error path returns the built-in
// schema alongside the error, so a caller that logs and continues still
// holds a usable schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}
	var s Schema
	if err := yaml.Unmarshal(content, &s); err != nil {
		return Default(), err
	}
	if err := s.finish(); err != nil {
		return Default(), err
	}
	return &s, nil
}

// Default returns the schema for the COREA / PRISM / PRISMUK deployment.
func Default() *Schema {
	s := &Schema{
		Visits:   []string{"V1", "V2", "V3", "V4", "V5"},
		Projects: []string{"COREA", "PRISM", "PRISMUK"},
		PairsMap: map[string][]string{
			"Bulk Exome RNA-seq": {"PAXgene", "PBMC"},
			"Bulk Total RNA-seq": {"Bronchial biopsy", "Nasal cell", "Sputum"},
			"Metabolites":        {"Plasma", "Urine"},
			"Methylation":        {"Whole blood"},
			"miRNA":              {"Serum"},
			"Protein":            {"Plasma", "Serum"},
			"scRNA-seq":          {"Whole blood", "Bronchial biopsy", "Bronchial BAL"},
			"SNP":                {"Whole blood"},
		},
	}
	if err := s.finish(); err != nil {
		// Default must always be internally consistent.
		panic(err)
	}
	return s
}

// finish derives the lookup sets and checks internal consistency. Omics and
// tissue lists may be omitted in an override file, in which case they are
// derived from the pairing table.
func (s *Schema) finish() error {
	if len(s.Visits) == 0 {
		return fmt.Errorf("schema: no visits configured")
	}
	if len(s.Projects) == 0 {
		return fmt.Errorf("schema: no projects configured")
	}
	if len(s.PairsMap) == 0 {
		return fmt.Errorf("schema: no omics/tissue pairings configured")
	}

	if len(s.Omics) == 0 {
		for omics := range s.PairsMap {
			s.Omics = append(s.Omics, omics)
		}
		sort.Strings(s.Omics)
	}
	if len(s.Tissues) == 0 {
		seen := make(map[string]struct{})
		for _, tissues := range s.PairsMap {
			for _, tissue := range tissues {
				if _, ok := seen[tissue]; !ok {
					seen[tissue] = struct{}{}
					s.Tissues = append(s.Tissues, tissue)
				}
			}
		}
		sort.Strings(s.Tissues)
	}

	s.visitSet = toSet(s.Visits)
	s.projectSet = toSet(s.Projects)
	s.omicsSet = toSet(s.Omics)
	s.tissueSet = toSet(s.Tissues)

	s.pairSet = make(map[string]map[string]struct{}, len(s.PairsMap))
	for omics, tissues := range s.PairsMap {
		if _, ok := s.omicsSet[omics]; !ok {
			return fmt.Errorf("schema: paired omics %q missing from omics list", omics)
		}
		inner := make(map[string]struct{}, len(tissues))
		for _, tissue := range tissues {
			if _, ok := s.tissueSet[tissue]; !ok {
				return fmt.Errorf("schema: paired tissue %q missing from tissue list", tissue)
			}
			inner[tissue] = struct{}{}
		}
		s.pairSet[omics] = inner
	}
	return nil
}

func (s *Schema) VisitValid(visit string) bool {
	_, ok := s.visitSet[visit]
	return ok
}

func (s *Schema) ProjectValid(project string) bool {
	_, ok := s.projectSet[project]
	return ok
}

func (s *Schema) OmicsValid(omics string) bool {
	_, ok := s.omicsSet[omics]
	return ok
}

func (s *Schema) TissueValid(tissue string) bool {
	_, ok := s.tissueSet[tissue]
	return ok
}

// PairAllowed reports whether the tissue is an approved material for the
// omics assay. Both values must individually be members of their vocabularies
// and the pairing itself must be listed.
func (s *Schema) PairAllowed(omics, tissue string) bool {
	tissues, ok := s.pairSet[omics]
	if !ok {
		return false
	}
	_, ok = tissues[tissue]
	return ok
}

// Pairs enumerates the allowed pairings in stable order, omics then tissue.
func (s *Schema) Pairs() []Pair {
	omicsList := make([]string, 0, len(s.PairsMap))
	for omics := range s.PairsMap {
		omicsList = append(omicsList, omics)
	}
	sort.Strings(omicsList)

	var pairs []Pair
	for _, omics := range omicsList {
		tissues := append([]string(nil), s.PairsMap[omics]...)
		sort.Strings(tissues)
		for _, tissue := range tissues {
			pairs = append(pairs, Pair{Omics: omics, Tissue: tissue})
		}
	}
	return pairs
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
