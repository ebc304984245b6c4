package models

// Questionnaire holds the high-level risk screening answers from the
// submission form.
type Questionnaire struct {
	HandlesPII             bool `json:"handlesPII"`
	InternetFacing         bool `json:"internetFacing"`
	StoresPaymentData      bool `json:"storesPaymentData"`
	ThirdPartyIntegrations bool `json:"thirdPartyIntegrations"`
	RequiresUserAuth       bool `json:"requiresUserAuth"`
}

// FormDetails is the full intake questionnaire attached to a ticket. The
// workflow only interprets the three CIA ratings and CalculatedTier; the
// rest is carried opaquely for the assessment team.
type FormDetails struct {
	Description          string `json:"description"`
	TargetAudienceRegion string `json:"targetAudienceRegion,omitempty"`

	Questionnaire Questionnaire `json:"securityAnswers"`

	BusinessOwner    string `json:"businessOwner,omitempty"`
	ITProjectManager string `json:"itProjectManager,omitempty"`
	TechContact      string `json:"techContact,omitempty"`

	GoLiveDate      string `json:"goLiveDate,omitempty"`
	TestingDeadline string `json:"testingDeadline,omitempty"`
	BlackoutDates   string `json:"blackoutDates,omitempty"`
	ExpeditedReason string `json:"expeditedReason,omitempty"`

	// Tier determination. Ratings are "1", "2" or "3" as captured by the
	// form; CalculatedTier is derived from them and kept in sync.
	BusinessCriticality   string  `json:"businessCriticality,omitempty"`
	ConfidentialityRating string  `json:"confidentialityRating"`
	IntegrityRating       string  `json:"integrityRating"`
	AvailabilityRating    string  `json:"availabilityRating"`
	CalculatedTier        AppTier `json:"calculatedTier,omitempty"`

	DevSecOpsImplemented string `json:"devSecOpsImplemented,omitempty"`
	EnvironmentPrereqs   string `json:"environmentPrereqs,omitempty"`
	TechStack            string `json:"techStack,omitempty"`
	RepoURL              string `json:"repoUrl,omitempty"`
	PriorAssessment      string `json:"priorAssessment,omitempty"`
	TestURLProvided      string `json:"testUrlProvided,omitempty"`
	OutOfScopeItems      string `json:"outOfScopeItems,omitempty"`
	WalkthroughInfo      string `json:"walkthroughInfo,omitempty"`

	TestAccountsProvided string `json:"testAccountsProvided,omitempty"`
	PIICollectionDetails string `json:"piiCollectionDetails,omitempty"`

	APIProtocol       string `json:"apiProtocol,omitempty"`
	APIAuthMechanisms string `json:"apiAuthMechanisms,omitempty"`

	AuthMechanisms        string `json:"authMechanisms,omitempty"`
	GeoCompliance         string `json:"geoCompliance,omitempty"`
	KnownSecurityConcerns string `json:"knownSecurityConcerns,omitempty"`
}
