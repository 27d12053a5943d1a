package categories

// Defaults returns the built-in category definitions for the combined
// insurance document triage demo. Overridable via configuration.
func Defaults() []Category {
	return []Category{
		{
			Name:        "Policy",
			Description: "Insurance policy schedule pages: policyholder details, coverage amounts, premium breakdown",
			Keywords: []string{
				"policy", "policyholder", "premium", "coverage", "sum insured",
				"schedule", "effective date", "renewal",
			},
		},
		{
			Name:        "Certificate",
			Description: "Certificate of insurance pages confirming cover for a third party",
			Keywords: []string{
				"certificate", "certify", "certificate holder", "proof of insurance",
				"issued to", "verification",
			},
		},
		{
			Name:        "Terms",
			Description: "General terms and conditions: definitions, exclusions, claims procedure, legal clauses",
			Keywords: []string{
				"terms", "conditions", "exclusions", "definitions", "claims",
				"liability", "clause", "obligations",
			},
		},
	}
}
