package gcal

import "github.com/altheia/backend/internal/models"

// Severity is the day-level classification of a symptom log.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// severityColors maps a classification to a Google Calendar color id.
var severityColors = map[Severity]string{
	SeverityMild:     "2",  // green
	SeverityModerate: "5",  // yellow
	SeveritySevere:   "11", // red
}

// defaultColorID is used when a severity has no color mapping.
const defaultColorID = "1"

// ClassifySeverity averages the severity ratings of a day's symptoms.
// An empty list is mild; an average of 4 or above is severe; 2.5 or
// above is moderate.
func ClassifySeverity(symptoms []models.SymptomItem) Severity {
	if len(symptoms) == 0 {
		return SeverityMild
	}

	total := 0
	for _, s := range symptoms {
		total += s.Severity
	}
	avg := float64(total) / float64(len(symptoms))

	switch {
	case avg >= 4:
		return SeveritySevere
	case avg >= 2.5:
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// colorID returns the calendar color id for a severity.
func colorID(s Severity) string {
	if id, ok := severityColors[s]; ok {
		return id
	}
	return defaultColorID
}
