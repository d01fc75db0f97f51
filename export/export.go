// Package export renders a collected form document into a paginated
// plain-text case report, the shape the PDF layer prints.
package export

import (
	"fmt"
	"strings"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

const (
	lineWidth    = 78
	linesPerPage = 54
)

type section struct {
	title  string
	fields []field
}

type field struct {
	label string
	id    string
}

var sections = []section{
	{"Patient Details", []field{
		{"Name", "patient-name"},
		{"Age", "patient-age"},
		{"Sex", "patient-sex"},
		{"Occupation", "patient-occupation"},
	}},
	{"Chief Complaint", []field{
		{"Complaint", "cc-notes"},
	}},
	{"History of Present Illness", []field{
		{"Narrative", "hpi-notes"},
		{"Onset", "hpi-onset"},
		{"Mechanism of Injury / Onset", "hpi-moi"},
		{"Location / Radiation", "hpi-location"},
		{"Duration / Frequency", "hpi-duration"},
		{"Character of Symptom", "hpi-character"},
		{"Aggravating Factors", "hpi-aggravating"},
		{"Alleviating Factors", "hpi-alleviating"},
		{"Related Symptoms", "hpi-related-symptoms"},
		{"Pertinent Negatives", "hpi-pertinent-negatives"},
		{"Timing", "hpi-timing"},
		{"Severity", "hpi-severity"},
		{"Functional Limitations", "hpi-functional-limitations"},
		{"Other Injuries", "hpi-other-injuries"},
	}},
	{"Past History", []field{
		{"Past Medical History", "pmh-notes"},
		{"Past Orthopedic History", "past-ortho-notes"},
		{"Family History", "fh-notes"},
		{"Social History", "sh-notes"},
		{"Review of Systems", "ros-notes"},
	}},
	{"Examination", []field{
		{"General Inspection", "exam-general"},
		{"Look", "exam-look"},
		{"Feel", "exam-feel"},
		{"Move", "exam-move"},
		{"Measurements", "exam-measurements"},
		{"Special Tests", "exam-special-tests"},
		{"Neurological", "exam-neuro"},
		{"Vascular", "exam-vascular"},
	}},
	{"Summary & Diagnosis", []field{
		{"Clinical Summary", "summary-clinical"},
		{"Differential Diagnosis (History)", "summary-ddx-history"},
		{"Differential Diagnosis (History & Exam)", "summary-ddx-exam"},
		{"Provisional Diagnosis", "summary-provisional"},
		{"Initial Plan", "summary-plan"},
	}},
}

var traumaLabels = map[string]string{
	"head_injury":  "Head Injury / LOC",
	"neck_injury":  "Neck Injury",
	"chest_injury": "Chest Injury",
	"abd_injury":   "Abdominal Injury",
}

// Render formats the document as a paginated report. Empty fields are
// skipped; empty sections are omitted entirely.
func Render(title string, doc domain.FormDocument) string {
	var lines []string
	add := func(text string) {
		lines = append(lines, wrap(text, lineWidth)...)
	}

	add("Orthopedic Case History: " + title)
	add(strings.Repeat("=", lineWidth))

	for _, sec := range sections {
		body := []string{}
		for _, f := range sec.fields {
			if value := strings.TrimSpace(doc.Fields[f.id]); value != "" {
				body = append(body, wrap(f.label+": "+value, lineWidth)...)
			}
		}
		if sec.title == "History of Present Illness" {
			body = append(body, traumaLines(doc)...)
		}
		if len(body) == 0 {
			continue
		}
		add("")
		add(sec.title)
		add(strings.Repeat("-", len(sec.title)))
		lines = append(lines, body...)
	}

	if len(doc.Medications) > 0 {
		add("")
		add("Current Medications")
		add(strings.Repeat("-", len("Current Medications")))
		for _, med := range doc.Medications {
			entry := med.Name
			if med.Dosage != "" || med.Frequency != "" {
				entry += fmt.Sprintf(" (%s - %s)", orNA(med.Dosage), orNA(med.Frequency))
			}
			add("  " + entry)
		}
	}
	if len(doc.Allergies) > 0 {
		add("")
		add("Allergies")
		add(strings.Repeat("-", len("Allergies")))
		for _, al := range doc.Allergies {
			entry := al.Name
			if al.Reaction != "" {
				entry += " - " + al.Reaction
			}
			add("  " + entry)
		}
	}

	return paginate(lines)
}

func traumaLines(doc domain.FormDocument) []string {
	out := []string{}
	for _, group := range domain.TraumaGroups {
		value, ok := doc.Fields[group]
		if !ok || value == "" {
			continue
		}
		line := traumaLabels[group] + ": " + value
		if group == "head_injury" && value == "yes" {
			if details := strings.TrimSpace(doc.Fields["head_injury_details"]); details != "" {
				line += " (" + details + ")"
			}
		}
		out = append(out, wrap(line, lineWidth)...)
	}
	return out
}

// paginate inserts page breaks with page numbers.
func paginate(lines []string) string {
	var b strings.Builder
	page := 1
	for i, line := range lines {
		if i > 0 && i%linesPerPage == 0 {
			page++
			b.WriteString(fmt.Sprintf("\n--- Page %d ---\n\n", page))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// wrap splits text into lines at most width wide, on word boundaries.
func wrap(text string, width int) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
