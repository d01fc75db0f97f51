// Package extract recovers structured case data from free-text AI output.
// It is strictly best-effort: unparseable or creatively formatted text
// yields zero fields, which is a valid outcome, not an error. All
// mutation decisions belong to the caller.
package extract

import (
	"strings"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Result is the partial document recovered from a response, plus the
// number of distinct fields recognized as a confidence signal.
type Result struct {
	Document   domain.FormDocument
	FieldCount int
}

// Confident reports whether enough distinct fields were recognized to
// offer populating the form. Below the gate the text is treated as prose.
func (r Result) Confident() bool {
	return r.FieldCount > 2
}

// labelRule maps a normalized-label substring to a form field. Rules are
// ordered: the first matching rule wins, so specific labels must come
// before the generic substrings they contain. Short tokens match whole
// hyphen-separated words only, so "age" cannot fire inside "management".
type labelRule struct {
	substr     string
	field      string
	accumulate bool
}

func (r labelRule) matches(label string) bool {
	if len(r.substr) > 4 {
		return strings.Contains(label, r.substr)
	}
	for _, token := range strings.Split(label, "-") {
		if token == r.substr {
			return true
		}
	}
	return false
}

// The mapping table is a starting point, not a contract; labels the AI
// invents that match nothing are simply dropped.
var labelRules = []labelRule{
	{"patient-name", "patient-name", false},
	{"name", "patient-name", false},
	{"age", "patient-age", false},
	{"sex", "patient-sex", false},
	{"gender", "patient-sex", false},
	{"occupation", "patient-occupation", false},
	{"chief-complaint", "cc-notes", false},
	{"presenting-complaint", "cc-notes", false},
	{"mechanism", "hpi-moi", true},
	{"onset", "hpi-onset", false},
	{"history-of-present", "hpi-notes", true},
	{"present-illness", "hpi-notes", true},
	{"hpi", "hpi-notes", true},
	{"location", "hpi-location", false},
	{"radiation", "hpi-location", false},
	{"duration", "hpi-duration", false},
	{"character", "hpi-character", false},
	{"aggravating", "hpi-aggravating", false},
	{"alleviating", "hpi-alleviating", false},
	{"relieving", "hpi-alleviating", false},
	{"related-symptom", "hpi-related-symptoms", false},
	{"associated-symptom", "hpi-related-symptoms", false},
	{"negative", "hpi-pertinent-negatives", false},
	{"timing", "hpi-timing", false},
	{"severity", "hpi-severity", false},
	{"other-injuries", "hpi-other-injuries", false},
	{"past-medical", "pmh-notes", true},
	{"pmh", "pmh-notes", true},
	{"past-orthopedic", "past-ortho-notes", true},
	{"past-ortho", "past-ortho-notes", true},
	// family/social must precede the generic summary rules; "family and
	// social history" style labels would otherwise collide there.
	{"family", "fh-notes", true},
	{"social", "sh-notes", true},
	{"review-of-systems", "ros-notes", true},
	{"ros", "ros-notes", true},
	{"general-examination", "exam-general", false},
	{"general-inspection", "exam-general", false},
	{"look", "exam-look", false},
	{"inspection", "exam-look", false},
	{"feel", "exam-feel", false},
	{"palpation", "exam-feel", false},
	{"move", "exam-move", false},
	{"range-of-motion", "exam-move", false},
	{"measurement", "exam-measurements", false},
	{"special-test", "exam-special-tests", false},
	{"neuro", "exam-neuro", false},
	{"vascular", "exam-vascular", false},
	{"clinical-summary", "summary-clinical", true},
	{"summary", "summary-clinical", true},
	{"differential", "summary-ddx-history", true},
	{"provisional", "summary-provisional", false},
	{"diagnosis", "summary-provisional", false},
	{"plan", "summary-plan", true},
	{"management", "summary-plan", true},
	{"examination", "exam-general", true},
}

// Parse scans text line by line for "label: value" pairs and maps
// recognized labels onto form fields. Medication and allergy labels feed
// the sub-lists, one entry per line.
func Parse(text string) Result {
	doc := domain.NewFormDocument()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• \t"))
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		label := normalizeLabel(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if label == "" || value == "" {
			continue
		}

		if strings.Contains(label, "medication") || strings.Contains(label, "drug-history") {
			for _, med := range splitList(value) {
				doc.Medications = append(doc.Medications, domain.MedicationEntry{Name: med})
			}
			continue
		}
		if strings.Contains(label, "allerg") {
			for _, al := range splitList(value) {
				doc.Allergies = append(doc.Allergies, domain.AllergyEntry{Name: al})
			}
			continue
		}

		for _, rule := range labelRules {
			if !rule.matches(label) {
				continue
			}
			if rule.accumulate && doc.Fields[rule.field] != "" {
				doc.Fields[rule.field] += "\n" + value
			} else if rule.accumulate || doc.Fields[rule.field] == "" {
				doc.Fields[rule.field] = value
			}
			break
		}
	}

	count := len(doc.Fields)
	if len(doc.Medications) > 0 {
		count++
	}
	if len(doc.Allergies) > 0 {
		count++
	}
	return Result{Document: doc, FieldCount: count}
}

// normalizeLabel lowercases a label, converts whitespace and underscores
// to hyphens, and strips parenthesized qualifiers and markup.
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if i := strings.Index(label, "("); i >= 0 {
		if j := strings.Index(label, ")"); j > i {
			label = label[:i] + label[j+1:]
		} else {
			label = label[:i]
		}
	}
	label = strings.Trim(label, "*#_ \t")
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.TrimSpace(label) {
		switch {
		case r == ' ' || r == '\t' || r == '_' || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// splitList breaks "aspirin, atorvastatin; metformin" style values into
// entries, keeping single-item values intact.
func splitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !strings.EqualFold(p, "none") && !strings.EqualFold(p, "nil") {
			out = append(out, p)
		}
	}
	return out
}
