package config

// OrdinalMappings maps a column name (or name prefix, matched when no exact
// entry exists) to its category labels ordered smallest to largest. The order
// is authored by hand from the questionnaire; it is never inferred from data.
// After encoding, a label's 1-based position in its list is its numeric rank.
type OrdinalMappings map[string][]string

// DefaultOrdinalMappings returns the ordinal tables for the questionnaire's
// ordered categorical attributes. Columns absent from the table stay
// unordered and receive arbitrary-but-consistent category codes instead.
func DefaultOrdinalMappings() OrdinalMappings {
	return OrdinalMappings{
		"AGE_BAND": {
			"Under 25", "25-34", "35-44", "45-54", "55-64", "65 or older",
		},
		"INCOME_BAND": {
			"Under 25k", "25k-50k", "50k-75k", "75k-100k", "Over 100k",
		},
		"EDUCATION": {
			"Primary", "Secondary", "Vocational", "Bachelor", "Postgraduate",
		},
		"TENURE": {
			"Less than 1 year", "1-2 years", "3-5 years", "6-10 years",
			"More than 10 years",
		},
		"HOUSEHOLD_SIZE": {
			"1", "2", "3", "4", "5 or more",
		},
		// PR1 profiling questions share a usage-frequency scale; prefix match
		// covers every PR1_*_FREQ column. "Never" ranks lowest and doubles as
		// the imputation sentinel for respondents who skipped the question.
		"PR1_FREQ": {
			"Never", "Rarely", "Monthly", "Weekly", "Daily",
		},
	}
}

// Lookup resolves the ordered label list for a column, trying an exact name
// match first and then the longest prefix match. The second return reports
// whether the column is ordered at all.
func (m OrdinalMappings) Lookup(column string) ([]string, bool) {
	if levels, ok := m[column]; ok {
		return levels, true
	}
	var best string
	for key := range m {
		if len(key) < len(column) && column[:len(key)] == key && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return nil, false
	}
	return m[best], true
}
