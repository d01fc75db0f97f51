// Package formstate is the single source of truth for clinician-entered
// form data. It collects the current state into a FormDocument and
// repopulates itself wholesale from one.
package formstate

import (
	"strings"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// KnownFields are the scalar field identifiers of the history form, in
// form order. Unknown identifiers in a loaded document are ignored.
var KnownFields = []string{
	// Demographics
	"patient-name",
	"patient-age",
	"patient-sex",
	"patient-occupation",
	// Chief complaint
	"cc-notes",
	// History of present illness
	"hpi-notes",
	"hpi-onset",
	"hpi-moi",
	"hpi-location",
	"hpi-duration",
	"hpi-character",
	"hpi-aggravating",
	"hpi-alleviating",
	"hpi-related-symptoms",
	"hpi-pertinent-negatives",
	"hpi-timing",
	"hpi-severity",
	"hpi-functional-limitations",
	"hpi-other-injuries",
	"head_injury_details",
	// Past and social history
	"pmh-notes",
	"past-ortho-notes",
	"fh-notes",
	"sh-notes",
	"ros-notes",
	// Examination
	"exam-general",
	"exam-look",
	"exam-feel",
	"exam-move",
	"exam-measurements",
	"exam-special-tests",
	"exam-neuro",
	"exam-vascular",
	// Summary and diagnosis
	"summary-clinical",
	"summary-ddx-history",
	"summary-ddx-exam",
	"summary-provisional",
	"summary-plan",
}

// TraumaYes is the radio value that reveals the head-injury detail field.
const TraumaYes = "yes"

// Store holds the live form state: scalar fields, the four trauma radio
// groups, and the medication/allergy row lists. Rows mirror the UI, so
// blank rows exist here and are pruned only at Collect time.
type Store struct {
	fields      map[string]string
	trauma      map[string]string
	medications []domain.MedicationEntry
	allergies   []domain.AllergyEntry
}

// NewStore returns an empty form with one blank row per sub-list.
func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

// Clear resets every field to empty, unselects all trauma groups, and
// restores a single blank row in each sub-list.
func (s *Store) Clear() {
	s.fields = map[string]string{}
	s.trauma = map[string]string{}
	s.medications = []domain.MedicationEntry{{}}
	s.allergies = []domain.AllergyEntry{{}}
}

// SetField assigns a scalar field. Unknown and password-like identifiers
// are ignored so a stray key can never enter the document.
func (s *Store) SetField(id, value string) {
	if !isKnownField(id) {
		return
	}
	s.fields[id] = value
}

// Field returns the current value of a scalar field.
func (s *Store) Field(id string) string {
	return s.fields[id]
}

// SetTrauma selects a value in one of the trauma radio groups. An empty
// value unselects the group.
func (s *Store) SetTrauma(group, value string) {
	if !isTraumaGroup(group) {
		return
	}
	if value == "" {
		delete(s.trauma, group)
		return
	}
	s.trauma[group] = value
}

// Trauma returns the selected value for a group, or "" when unselected.
func (s *Store) Trauma(group string) string {
	return s.trauma[group]
}

// SetMedications replaces the medication rows.
func (s *Store) SetMedications(rows []domain.MedicationEntry) {
	s.medications = append([]domain.MedicationEntry(nil), rows...)
}

// SetAllergies replaces the allergy rows.
func (s *Store) SetAllergies(rows []domain.AllergyEntry) {
	s.allergies = append([]domain.AllergyEntry(nil), rows...)
}

// Medications returns the current medication rows, blanks included.
func (s *Store) Medications() []domain.MedicationEntry {
	return append([]domain.MedicationEntry(nil), s.medications...)
}

// Allergies returns the current allergy rows, blanks included.
func (s *Store) Allergies() []domain.AllergyEntry {
	return append([]domain.AllergyEntry(nil), s.allergies...)
}

// Collect serializes the current state. Entries with a blank name are
// excluded from the sub-lists, and the head-injury detail text is carried
// only when that group's answer is "yes".
func (s *Store) Collect() domain.FormDocument {
	doc := domain.NewFormDocument()
	for id, value := range s.fields {
		if id == "head_injury_details" {
			continue // handled with the trauma group below
		}
		doc.Fields[id] = value
	}
	for group, value := range s.trauma {
		doc.Fields[group] = value
	}
	if s.trauma["head_injury"] == TraumaYes {
		doc.Fields["head_injury_details"] = s.fields["head_injury_details"]
	}

	doc.Medications = []domain.MedicationEntry{}
	for _, med := range s.medications {
		if strings.TrimSpace(med.Name) != "" {
			doc.Medications = append(doc.Medications, med)
		}
	}
	doc.Allergies = []domain.AllergyEntry{}
	for _, al := range s.allergies {
		if strings.TrimSpace(al.Name) != "" {
			doc.Allergies = append(doc.Allergies, al)
		}
	}
	return doc
}

// Populate clears the form and loads it from a document. Unknown keys are
// silently ignored. Empty or absent sub-lists leave one blank row each.
func (s *Store) Populate(doc domain.FormDocument) {
	s.Clear()
	for id, value := range doc.Fields {
		switch {
		case isTraumaGroup(id):
			s.SetTrauma(id, value)
		case isKnownField(id):
			s.fields[id] = value
		}
	}
	// Detail text only applies when the head-injury answer is yes.
	if s.trauma["head_injury"] != TraumaYes {
		delete(s.fields, "head_injury_details")
	}
	if len(doc.Medications) > 0 {
		s.medications = append([]domain.MedicationEntry(nil), doc.Medications...)
	}
	if len(doc.Allergies) > 0 {
		s.allergies = append([]domain.AllergyEntry(nil), doc.Allergies...)
	}
}

func isKnownField(id string) bool {
	if strings.Contains(strings.ToLower(id), "password") {
		return false
	}
	for _, known := range KnownFields {
		if known == id {
			return true
		}
	}
	return false
}

func isTraumaGroup(id string) bool {
	for _, group := range domain.TraumaGroups {
		if group == id {
			return true
		}
	}
	return false
}
