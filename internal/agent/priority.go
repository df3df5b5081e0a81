package agent

import "regexp"

// callToActionPattern flags summary points that ask the reader to do
// something, which bumps otherwise-personal mail to medium priority.
var callToActionPattern = regexp.MustCompile(`(?i)action|please|kindly|request|respond|confirm|review`)

// DerivePriority maps a category and summary to a priority level. The
// checks form a decision table evaluated top to bottom, first match wins.
func DerivePriority(category Category, summary EmailSummary) Priority {
	if category == CategoryImportant {
		return PriorityHigh
	}
	if category == CategoryTransactional {
		return PriorityMedium
	}

	hasCallToAction := false
	for _, point := range summary.KeyPoints {
		if callToActionPattern.MatchString(point) {
			hasCallToAction = true
			break
		}
	}

	if category == CategoryPersonal && hasCallToAction {
		return PriorityMedium
	}
	if category == CategoryMarketing {
		return PriorityLow
	}

	return PriorityMedium
}
