package forms

import "strings"

// categoryRule maps a keyword group to a category. Rules are evaluated in
// order and the first matching group wins; ordering is part of the contract
// (e.g. "first"/"last" name dispatch must run before the generic rules,
// and "number" belongs to phone only when nothing earlier matched).
type categoryRule struct {
	keywords []string
	category FieldCategory
}

var categoryRules = []categoryRule{
	{[]string{"name"}, CategoryFullName}, // sub-dispatched below
	{[]string{"email", "e-mail"}, CategoryEmail},
	{[]string{"phone", "mobile", "tel", "number"}, CategoryPhone},
	{[]string{"address", "location", "city", "country"}, CategoryAddress},
	{[]string{"resume", "cv", "curriculum"}, CategoryResume},
	{[]string{"cover", "letter", "motivation"}, CategoryCoverLetter},
	{[]string{"experience", "years", "career"}, CategoryExperience},
	{[]string{"skill", "technology", "programming"}, CategorySkills},
	{[]string{"education", "degree", "university", "college"}, CategoryEducation},
	{[]string{"salary", "compensation", "wage"}, CategorySalary},
	{[]string{"start", "available", "date"}, CategoryStartDate},
	{[]string{"why", "question", "tell", "describe"}, CategoryCustomQuestion},
}

// Categorize maps raw field metadata to a semantic category. It is a pure
// function over the concatenated, lower-cased name, id, label and
// placeholder text.
func Categorize(name, id, label, placeholder string) FieldCategory {
	combined := strings.ToLower(name + " " + id + " " + label + " " + placeholder)

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(combined, keyword) {
				if rule.category == CategoryFullName {
					return dispatchName(combined)
				}
				return rule.category
			}
		}
	}

	return CategoryOther
}

// dispatchName distinguishes first/last/full name fields.
func dispatchName(combined string) FieldCategory {
	if strings.Contains(combined, "first") {
		return CategoryFirstName
	}
	if strings.Contains(combined, "last") {
		return CategoryLastName
	}
	return CategoryFullName
}
