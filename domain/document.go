package domain

import (
	"encoding/json"
	"strings"
)

// TraumaGroups are the radio-group names of the associated-trauma survey.
// Each serializes as its selected value, or null when nothing is selected.
var TraumaGroups = []string{"head_injury", "neck_injury", "chest_injury", "abd_injury"}

// FieldPatientName is the scalar field the case title derives from.
const FieldPatientName = "patient-name"

// MedicationEntry is one row of the current-medications sub-list.
type MedicationEntry struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// AllergyEntry is one row of the allergies sub-list.
type AllergyEntry struct {
	Name     string `json:"name"`
	Reaction string `json:"reaction"`
}

// FormDocument is the serialized form state: a flat mapping of field
// identifier to string value, plus the medication and allergy sub-lists.
// An absent trauma-group key means no option is selected.
type FormDocument struct {
	Fields      map[string]string
	Medications []MedicationEntry
	Allergies   []AllergyEntry
}

// NewFormDocument returns an empty document with an allocated field map.
func NewFormDocument() FormDocument {
	return FormDocument{Fields: map[string]string{}}
}

// PatientName returns the patient-name field, trimmed.
func (d FormDocument) PatientName() string {
	return strings.TrimSpace(d.Fields[FieldPatientName])
}

// IsEmpty reports whether the document holds no values at all.
func (d FormDocument) IsEmpty() bool {
	return len(d.Fields) == 0 && len(d.Medications) == 0 && len(d.Allergies) == 0
}

// Clone returns a deep copy of the document.
func (d FormDocument) Clone() FormDocument {
	out := FormDocument{Fields: make(map[string]string, len(d.Fields))}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	out.Medications = append([]MedicationEntry(nil), d.Medications...)
	out.Allergies = append([]AllergyEntry(nil), d.Allergies...)
	return out
}

// MarshalJSON emits the flat wire shape: scalar fields at the top level,
// the four trauma groups always present (null when unselected), and the
// two sub-lists as arrays.
func (d FormDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Fields)+6)
	for k, v := range d.Fields {
		out[k] = v
	}
	for _, group := range TraumaGroups {
		if _, ok := d.Fields[group]; !ok {
			out[group] = nil
		}
	}
	if d.Medications != nil {
		out["medications"] = d.Medications
	} else {
		out["medications"] = []MedicationEntry{}
	}
	if d.Allergies != nil {
		out["allergies"] = d.Allergies
	} else {
		out["allergies"] = []AllergyEntry{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat wire shape. Null values and non-string
// scalars are skipped rather than rejected.
func (d *FormDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Fields = make(map[string]string, len(raw))
	d.Medications = nil
	d.Allergies = nil
	for k, v := range raw {
		switch k {
		case "medications":
			var meds []MedicationEntry
			if err := json.Unmarshal(v, &meds); err == nil {
				d.Medications = meds
			}
		case "allergies":
			var als []AllergyEntry
			if err := json.Unmarshal(v, &als); err == nil {
				d.Allergies = als
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				d.Fields[k] = s
			}
		}
	}
	return nil
}

// Indented renders the document as pretty-printed JSON with stable key
// order, used when embedding a form snapshot into an AI prompt.
func (d FormDocument) Indented() string {
	out := make(map[string]interface{}, len(d.Fields)+2)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["medications"] = d.Medications
	out["allergies"] = d.Allergies

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
