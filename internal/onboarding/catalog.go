// internal/onboarding/catalog.go
package onboarding

import "strings"

// Employment types
const (
	EmploymentW2   = "W-2"
	Employment1099 = "1099"
)

// Position types
const (
	PositionPCA = "PCA"
	PositionCNA = "CNA"
	PositionLPN = "LPN"
	PositionRN  = "RN"
)

// Backend form keys
const (
	KeyPersonalInformation     = "personalInformation"
	KeyProfessionalExperience  = "professionalExperience"
	KeyWorkExperience          = "workExperience"
	KeyEducation               = "education"
	KeyReferences              = "references"
	KeyLegalDisclosures        = "legalDisclosures"
	KeyPositionType            = "positionType"
	KeyEmploymentApplication   = "employmentApplication"
	KeyOrientationPresentation = "orientationPresentation"
	KeyEmergencyContact        = "emergencyContact"
	KeyDirectDeposit           = "directDeposit"
	KeyMisconductStatement     = "misconductStatement"
	KeyCodeOfEthics            = "codeOfEthics"
	KeyServiceDeliveryPolicy   = "serviceDeliveryPolicy"
	KeyNonCompeteAgreement     = "nonCompeteAgreement"
	KeyBackgroundCheck         = "backgroundCheck"
	KeyTBSymptomScreen         = "tbSymptomScreen"
	KeyOrientationChecklist    = "orientationChecklist"
	KeyI9Form                  = "i9Form"
	KeyW4Form                  = "w4Form"
	KeyW9Form                  = "w9Form"

	KeyJobDescriptionPCA     = "job-description-pca"
	KeyJobDescriptionCNA     = "job-description-cna"
	KeyJobDescriptionLPN     = "job-description-lpn"
	KeyJobDescriptionRN      = "job-description-rn"
	KeyEmployeeDetailsUpload = "employee-details-upload"
	KeyPCATrainingQuestions  = "pca-training-questions"
)

// positionField is the payload field of the positionType form holding the
// selected role.
const positionField = "positionAppliedFor"

// FormDefinition describes one onboarding form. ID is the kebab-case id used
// by the portal, Key the key the backend stores the form under.
type FormDefinition struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Catalog lists every onboarding form in display order.
var Catalog = []FormDefinition{
	{ID: "personal-information", Key: KeyPersonalInformation, Title: "Personal Information"},
	{ID: "professional-experience", Key: KeyProfessionalExperience, Title: "Professional Experience"},
	{ID: "work-experience", Key: KeyWorkExperience, Title: "Work Experience"},
	{ID: "education", Key: KeyEducation, Title: "Education"},
	{ID: "references", Key: KeyReferences, Title: "References"},
	{ID: "legal-disclosures", Key: KeyLegalDisclosures, Title: "Legal Disclosures"},
	{ID: "position-type", Key: KeyPositionType, Title: "Position Type"},
	{ID: "employment-application", Key: KeyEmploymentApplication, Title: "Employment Application"},
	{ID: "orientation-presentation", Key: KeyOrientationPresentation, Title: "Orientation Presentation"},
	{ID: "emergency-contact", Key: KeyEmergencyContact, Title: "Emergency Contact"},
	{ID: "direct-deposit", Key: KeyDirectDeposit, Title: "Direct Deposit"},
	{ID: "misconduct-statement", Key: KeyMisconductStatement, Title: "Staff Misconduct Statement"},
	{ID: "code-of-ethics", Key: KeyCodeOfEthics, Title: "Code of Ethics"},
	{ID: "service-delivery-policy", Key: KeyServiceDeliveryPolicy, Title: "Service Delivery Policy"},
	{ID: "non-compete-agreement", Key: KeyNonCompeteAgreement, Title: "Non-Compete Agreement"},
	{ID: "background-check", Key: KeyBackgroundCheck, Title: "Background Check"},
	{ID: "tb-symptom-screen", Key: KeyTBSymptomScreen, Title: "TB Symptom Screen"},
	{ID: "orientation-checklist", Key: KeyOrientationChecklist, Title: "Orientation Checklist"},
	{ID: "i9-form", Key: KeyI9Form, Title: "I-9 Employment Eligibility"},
	{ID: "w4-form", Key: KeyW4Form, Title: "W-4 Withholding Certificate"},
	{ID: "w9-form", Key: KeyW9Form, Title: "W-9 Taxpayer Identification"},
	{ID: KeyJobDescriptionPCA, Key: KeyJobDescriptionPCA, Title: "PCA Job Description"},
	{ID: KeyJobDescriptionCNA, Key: KeyJobDescriptionCNA, Title: "CNA Job Description"},
	{ID: KeyJobDescriptionLPN, Key: KeyJobDescriptionLPN, Title: "LPN Job Description"},
	{ID: KeyJobDescriptionRN, Key: KeyJobDescriptionRN, Title: "RN Job Description"},
	{ID: KeyEmployeeDetailsUpload, Key: KeyEmployeeDetailsUpload, Title: "Employee Details Upload"},
	{ID: KeyPCATrainingQuestions, Key: KeyPCATrainingQuestions, Title: "PCA Training Questions"},
}

var (
	keyByID = make(map[string]string, len(Catalog))
	idByKey = make(map[string]string, len(Catalog))
)

func init() {
	for _, def := range Catalog {
		keyByID[def.ID] = def.Key
		idByKey[def.Key] = def.ID
	}
}

// baseFormKeys are required from every employee regardless of role.
var baseFormKeys = []string{
	KeyPersonalInformation,
	KeyProfessionalExperience,
	KeyWorkExperience,
	KeyEducation,
	KeyReferences,
	KeyLegalDisclosures,
	KeyPositionType,
	KeyEmploymentApplication,
	KeyOrientationPresentation,
	KeyEmergencyContact,
	KeyDirectDeposit,
	KeyMisconductStatement,
	KeyCodeOfEthics,
	KeyServiceDeliveryPolicy,
	KeyNonCompeteAgreement,
	KeyBackgroundCheck,
	KeyTBSymptomScreen,
	KeyOrientationChecklist,
	KeyI9Form,
}

var positionFormKeys = map[string][]string{
	PositionPCA: {KeyJobDescriptionPCA, KeyEmployeeDetailsUpload, KeyPCATrainingQuestions},
	PositionCNA: {KeyJobDescriptionCNA, KeyEmployeeDetailsUpload},
	PositionLPN: {KeyJobDescriptionLPN, KeyEmployeeDetailsUpload},
	PositionRN:  {KeyJobDescriptionRN, KeyEmployeeDetailsUpload},
}

// BackendKey maps a portal form id to its backend key. Unknown ids are
// returned unchanged so callers may pass backend keys through.
func BackendKey(formID string) string {
	if key, ok := keyByID[formID]; ok {
		return key
	}
	return formID
}

// FormID maps a backend key to the portal form id.
func FormID(key string) string {
	if id, ok := idByKey[key]; ok {
		return id
	}
	return key
}

// Lookup returns the catalog entry for a form id or backend key.
func Lookup(idOrKey string) (FormDefinition, bool) {
	key := BackendKey(idOrKey)
	for _, def := range Catalog {
		if def.Key == key {
			return def, true
		}
	}
	return FormDefinition{}, false
}

// BaseForms returns a copy of the role-independent form keys.
func BaseForms() []string {
	return append([]string(nil), baseFormKeys...)
}

// NormalizePosition canonicalizes a position type. Unknown values are
// returned upper-cased and simply match no position-specific forms.
func NormalizePosition(positionType string) string {
	return strings.ToUpper(strings.TrimSpace(positionType))
}

// NormalizeEmploymentType canonicalizes an employment type so "w-2" and
// " W-2" both select the W-2 tax form.
func NormalizeEmploymentType(employmentType string) string {
	return strings.ToUpper(strings.TrimSpace(employmentType))
}

// ResolveRequiredForms returns the ordered form keys that count toward
// completion for an employment type and position. An unset position is the
// "no role chosen yet" state and yields only the base and tax forms.
func ResolveRequiredForms(employmentType, positionType string) []string {
	keys := BaseForms()

	switch NormalizeEmploymentType(employmentType) {
	case EmploymentW2:
		keys = append(keys, KeyW4Form)
	case Employment1099:
		keys = append(keys, KeyW9Form)
	}

	keys = append(keys, positionFormKeys[NormalizePosition(positionType)]...)
	return keys
}
