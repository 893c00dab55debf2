package compliance

import (
	"regexp"
	"strings"
)

type Group string

const (
	GroupIDs         Group = "ids"
	GroupLicense     Group = "license"
	GroupMedical     Group = "medical"
	GroupPersonal    Group = "personal"
	GroupClearance   Group = "clearance"
	GroupEducation   Group = "education"
	GroupHRRequested Group = "hr-requested"
)

// Definition describes one catalog requirement. Applies decides whether the
// requirement is tracked for an employee at all; Required decides whether it
// blocks completion once it applies.
type Definition struct {
	Key                string
	DisplayName        string
	Group              Group
	TracksResubmission bool
	AcceptsValue       bool
	Aliases            []string
	Applies            func(Employee) bool
	Required           func(Employee) bool
}

var deliveryRole = regexp.MustCompile(`(?i)delivery|driver|helper|rider|messenger`)

func ParseCategory(raw string) Category {
	value := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(value, "agency") || strings.Contains(value, "endorsed") {
		return CategoryAgency
	}
	return CategoryDirect
}

func IsDeliveryRole(position string) bool {
	return deliveryRole.MatchString(position)
}

func always(Employee) bool { return true }
func never(Employee) bool  { return false }

func directOnly(emp Employee) bool {
	return emp.Category != CategoryAgency
}

func deliveryOnly(emp Employee) bool {
	return IsDeliveryRole(emp.Position)
}

func married(emp Employee) bool {
	return directOnly(emp) && strings.EqualFold(strings.TrimSpace(emp.MaritalStatus), "married")
}

func officeRole(emp Employee) bool {
	return directOnly(emp) && !IsDeliveryRole(emp.Position)
}

func hasEducation(emp Employee) bool {
	value := strings.TrimSpace(emp.EducationalAttainment)
	return directOnly(emp) && value != "" && !strings.EqualFold(value, "N/A")
}

func governmentID(key, name string, aliases ...string) Definition {
	return Definition{Key: key, DisplayName: name, Group: GroupIDs, AcceptsValue: true, Aliases: aliases, Applies: always, Required: always}
}

func medicalExam(key, name string, aliases ...string) Definition {
	return Definition{Key: key, DisplayName: name, Group: GroupMedical, TracksResubmission: true, Aliases: aliases, Applies: directOnly, Required: always}
}

func clearance(key, name string, aliases ...string) Definition {
	return Definition{Key: key, DisplayName: name, Group: GroupClearance, TracksResubmission: true, Aliases: aliases, Applies: directOnly, Required: always}
}

// Catalog lists every requirement in display order. Agency employees only
// match the government IDs; every other group is gated by directOnly.
var Catalog = []Definition{
	governmentID("sss", "SSS", "sss_number", "sss_no"),
	governmentID("tin", "TIN", "tin_number", "tin_no"),
	governmentID("pagibig", "PAG-IBIG", "pag_ibig", "pag-ibig", "hdmf", "pagibig_number"),
	governmentID("philhealth", "PhilHealth", "phil_health", "philhealth_number"),

	{Key: "drivers_license", DisplayName: "Driver's License", Group: GroupLicense, TracksResubmission: true, AcceptsValue: true,
		Aliases: []string{"license", "driver_license", "drivers_licence"}, Applies: directOnly, Required: deliveryOnly},

	medicalExam("cbc", "Complete Blood Count", "complete_blood_count"),
	medicalExam("urinalysis", "Urinalysis"),
	medicalExam("fecalysis", "Fecalysis", "stool_exam"),
	medicalExam("chest_xray", "Chest X-Ray", "xray", "chest_x_ray"),
	medicalExam("drug_test", "Drug Test", "drug_screening"),
	medicalExam("hepatitis_b", "Hepatitis B Screening", "hepa_b", "hbsag"),

	{Key: "birth_certificate", DisplayName: "PSA Birth Certificate", Group: GroupPersonal, Aliases: []string{"psa", "psa_birth_certificate"}, Applies: directOnly, Required: always},
	{Key: "id_photo", DisplayName: "2x2 ID Photo", Group: GroupPersonal, Aliases: []string{"photo", "2x2_photo"}, Applies: directOnly, Required: always},
	{Key: "resume", DisplayName: "Resume", Group: GroupPersonal, Aliases: []string{"personal_data_sheet", "pds", "cv"}, Applies: directOnly, Required: always},
	{Key: "marriage_contract", DisplayName: "Marriage Contract", Group: GroupPersonal, Aliases: []string{"marriage_certificate"}, Applies: married, Required: never},
	{Key: "residence_sketch", DisplayName: "Residence Sketch", Group: GroupPersonal, Aliases: []string{"sketch", "location_sketch"}, Applies: officeRole, Required: always},

	clearance("nbi_clearance", "NBI Clearance", "nbi"),
	clearance("police_clearance", "Police Clearance", "police"),
	clearance("barangay_clearance", "Barangay Clearance", "barangay", "brgy_clearance"),

	{Key: "diploma", DisplayName: "Diploma", Group: GroupEducation, Applies: hasEducation, Required: always},
	{Key: "transcript_of_records", DisplayName: "Transcript of Records", Group: GroupEducation, Aliases: []string{"tor", "transcript"}, Applies: hasEducation, Required: always},
}

var definitionIndex = buildDefinitionIndex(Catalog)

func buildDefinitionIndex(defs []Definition) map[string]int {
	index := make(map[string]int, len(defs)*2)
	for i, def := range defs {
		index[Canonicalize(def.Key)] = i
		for _, alias := range def.Aliases {
			index[Canonicalize(alias)] = i
		}
	}
	return index
}

// LookupDefinition resolves a catalog key or one of its aliases.
func LookupDefinition(key string) (Definition, bool) {
	i, ok := definitionIndex[Canonicalize(key)]
	if !ok {
		return Definition{}, false
	}
	return Catalog[i], true
}

// ApplicableRequirements returns the catalog definitions tracked for emp, in
// catalog order. Outstanding HR requests are not included; see Evaluator.Entries.
func ApplicableRequirements(emp Employee) []Definition {
	out := make([]Definition, 0, len(Catalog))
	seen := make(map[string]struct{}, len(Catalog))
	for _, def := range Catalog {
		if !def.Applies(emp) {
			continue
		}
		if _, dup := seen[def.Key]; dup {
			continue
		}
		seen[def.Key] = struct{}{}
		out = append(out, def)
	}
	return out
}
