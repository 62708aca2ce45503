package advisory

// LawReference describes one of the Philippine laws the compliance check
// may cite for its urgency/category determination.
type LawReference struct {
	Code            string `json:"code"`
	FullName        string `json:"fullName"`
	FullDisplayName string `json:"fullDisplayName"`
	ReadMoreInfo    string `json:"readMoreInfo"`
}

// LawCitedNone is the sentinel used when no specific rule applies.
const LawCitedNone = "None"

var lawReferences = map[string]LawReference{
	"RA 11058": {
		Code:            "RA 11058",
		FullName:        "Occupational Safety and Health (OSH) Standards",
		FullDisplayName: "Occupational Safety and Health (OSH) Standards (Republic Act No. 11058)",
		ReadMoreInfo:    "Read this law at the official website of the Department of Labor and Employment (DOLE) at www.dole.gov.ph.",
	},
	"RA 11313": {
		Code:            "RA 11313",
		FullName:        "Safe Spaces Act",
		FullDisplayName: "Safe Spaces Act (Republic Act No. 11313)",
		ReadMoreInfo:    "Read this law at the official website of the Philippine Commission on Women (PCW) at www.pcw.gov.ph/republic-act-11313-safe-spaces-act.",
	},
	"RA 10627": {
		Code:            "RA 10627",
		FullName:        "Anti-Bullying Act of 2013",
		FullDisplayName: "Anti-Bullying Act of 2013 (Republic Act No. 10627)",
		ReadMoreInfo:    "Read this law at the official website of the Department of Education (DepEd) at www.deped.gov.ph.",
	},
	"RA 10173": {
		Code:            "RA 10173",
		FullName:        "Data Privacy Act of 2012",
		FullDisplayName: "Data Privacy Act of 2012 (Republic Act No. 10173)",
		ReadMoreInfo:    "Read this law at the official website of the National Privacy Commission (NPC) at www.privacy.gov.ph/data-privacy-act.",
	},
	"RA 11232": {
		Code:            "RA 11232",
		FullName:        "Revised Corporation Code",
		FullDisplayName: "Revised Corporation Code (Republic Act No. 11232)",
		ReadMoreInfo:    "Read this law at the official website of the Securities and Exchange Commission (SEC) at www.sec.gov.ph.",
	},
}

// LookupLaw returns the reference for a cited law code, or false for
// unknown codes and the "None" sentinel.
func LookupLaw(code string) (LawReference, bool) {
	if code == "" || code == LawCitedNone {
		return LawReference{}, false
	}
	ref, ok := lawReferences[code]
	return ref, ok
}

// LawDisplayName formats a law code as its full display name, falling
// back to the raw code (or "None") when unknown.
func LawDisplayName(code string) string {
	if ref, ok := LookupLaw(code); ok {
		return ref.FullDisplayName
	}
	if code == "" {
		return LawCitedNone
	}
	return code
}
