package catalog

// defaultKeywords maps requirement ids to the substrings that satisfy them.
var defaultKeywords = map[string][]string{
	"lease":            {"rent", "lease"},
	"insurance":        {"insurance"},
	"payroll":          {"payroll"},
	"utility":          {"utilities", "utility"},
	"damage_photos":    {"damage"},
	"bank_statements":  {"bank", "statement"},
	"tax_returns":      {"tax"},
	"business_license": {"license", "registration"},
}

var defaultRequirements = []DocumentRequirement{
	{
		ID:                 "lease",
		Name:               "Lease agreement or rent statement",
		RequiredFields:     []string{"lessor name", "property address", "monthly rent", "current period"},
		DateRange:          "Current lease term or latest statement",
		Forms:              "None",
		ActionableOutcomes: "Landlord forbearance letter; SBA loan rent verification; FEMA/SBA documentation.",
	},
	{
		ID:                 "insurance",
		Name:               "Insurance policy or declaration page",
		RequiredFields:     []string{"carrier", "policy number", "coverage period", "property address"},
		DateRange:          "Current policy period",
		Forms:              "None",
		ActionableOutcomes: "Insurance claim; SBA loan verification of coverage.",
	},
	{
		ID:                 "payroll",
		Name:               "Payroll records (last 3 months)",
		RequiredFields:     []string{"employer name", "pay period", "gross pay", "employee count or list"},
		DateRange:          "Last 3 months",
		Forms:              "None",
		ActionableOutcomes: "SBA disaster loan application; proof of payroll expense.",
	},
	{
		ID:                 "utility",
		Name:               "Utility bills (recent)",
		RequiredFields:     []string{"provider", "account or address", "amount due", "service period"},
		DateRange:          "Recent (e.g. last 2 months)",
		Forms:              "None",
		ActionableOutcomes: "Utility waiver request; expense documentation.",
	},
	{
		ID:                 "damage_photos",
		Name:               "Damage photographs",
		DateRange:          "Date of photo if visible",
		Forms:              "None",
		ActionableOutcomes: "Visual evidence for insurance and FEMA claims.",
	},
	{
		ID:                 "bank_statements",
		Name:               "Bank statements (last 3 months)",
		RequiredFields:     []string{"institution", "account type", "period", "ending balance"},
		DateRange:          "Last 3 months",
		Forms:              "None",
		ActionableOutcomes: "SBA loan and financial verification.",
	},
	{
		ID:                 "tax_returns",
		Name:               "Tax returns (most recent year)",
		RequiredFields:     []string{"tax year", "form type (e.g. 1040, 1120)", "key totals"},
		DateRange:          "Most recent tax year",
		Forms:              "IRS 1040, 1120, or equivalent",
		ActionableOutcomes: "SBA disaster loan application.",
	},
	{
		ID:                 "business_license",
		Name:               "Business license or registration",
		RequiredFields:     []string{"entity name", "jurisdiction", "validity date"},
		DateRange:          "Current",
		Forms:              "None",
		ActionableOutcomes: "Proof of business operation for relief applications.",
	},
}

// Default returns the built-in relief evidence catalog.
func Default() *Catalog {
	return MustNew(defaultRequirements, defaultKeywords)
}
