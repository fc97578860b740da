package forms

// Per-field time estimates in seconds, used to predict how long filling a
// form takes. Free-text answers dominate the estimate.
const (
	estimateBaseSeconds     = 10
	estimateTextSeconds     = 15
	estimateChoiceSeconds   = 5
	estimateTextareaSeconds = 60
	estimateEssaySeconds    = 120
)

// Confidence scores how well the categorizer understood the form: the
// fraction of discovered fields mapped to a category other than "other".
// A form with no fields scores zero.
func Confidence(fields []Field) float64 {
	if len(fields) == 0 {
		return 0
	}
	recognized := 0
	for _, field := range fields {
		if field.Category != CategoryOther {
			recognized++
		}
	}
	return float64(recognized) / float64(len(fields))
}

// EstimateSeconds predicts the wall-clock time to fill and submit the form.
func EstimateSeconds(fields []Field) int {
	total := estimateBaseSeconds
	for _, field := range fields {
		switch {
		case field.Category == CategoryCoverLetter || field.Category == CategoryCustomQuestion:
			total += estimateEssaySeconds
		case field.InputKind == "textarea":
			total += estimateTextareaSeconds
		case field.InputKind == "select" || field.InputKind == "checkbox" || field.InputKind == "radio":
			total += estimateChoiceSeconds
		default:
			total += estimateTextSeconds
		}
	}
	return total
}
