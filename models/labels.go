// ABOUTME: Human-readable labels for lead enumerations
// ABOUTME: Used by CSV/XLSX export, notes building and display
package models

var serviceTypeLabels = map[ServiceType]string{
	ServiceNewDoors:          "New Doors",
	ServiceNewWindows:        "New Windows",
	ServiceDoorReplacement:   "Door Replacement",
	ServiceWindowReplacement: "Window Replacement",
	ServiceDoorParts:         "Door Parts",
	ServiceWindowParts:       "Window Parts",
	ServiceRepair:            "Repair Services",
	ServiceConsultation:      "Consultation",
}

var statusLabels = map[Status]string{
	StatusInitial:    "Initial Contact",
	StatusQuoted:     "Quote Provided",
	StatusScheduled:  "Work Scheduled",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusFollowUp:   "Follow-up Needed",
}

var priorityLabels = map[Priority]string{
	PriorityLow:       "Low",
	PriorityMedium:    "Medium",
	PriorityHigh:      "High",
	PriorityEmergency: "Emergency",
}

var budgetLabels = map[Budget]string{
	BudgetUnder500:   "Under $500",
	Budget500To1000:  "$500 - $1,000",
	Budget1000To2500: "$1,000 - $2,500",
	Budget2500To5000: "$2,500 - $5,000",
	Budget5000To10k:  "$5,000 - $10,000",
	BudgetOver10k:    "Over $10,000",
	BudgetUnsure:     "Not sure yet",
}

var referralLabels = map[ReferralSource]string{
	ReferralGoogle:      "Google Search",
	ReferralReferral:    "Customer Referral",
	ReferralFacebook:    "Facebook",
	ReferralNextdoor:    "Nextdoor",
	ReferralFlyer:       "Flyer/Advertisement",
	ReferralDriveBy:     "Saw your work in neighborhood",
	ReferralYellowPages: "Yellow Pages",
	ReferralRepeat:      "Repeat Customer",
	ReferralOther:       "Other",
}

var urgencyLabels = map[Urgency]string{
	UrgencyFlexible:  "Flexible with timing",
	UrgencyMonth:     "Within the next month",
	UrgencyWeeks:     "Within 2-3 weeks",
	UrgencyUrgent:    "As soon as possible",
	UrgencyEmergency: "Emergency",
}

var contactPreferenceLabels = map[string]string{
	"phone": "Phone Call",
	"text":  "Text Message",
	"email": "Email",
	"any":   "Any method is fine",
}

var contactTimeLabels = map[string]string{
	"anytime":   "Anytime",
	"morning":   "Morning (8am-12pm)",
	"afternoon": "Afternoon (12pm-5pm)",
	"evening":   "Evening (5pm-8pm)",
	"weekends":  "Weekends only",
}

func ServiceTypeLabel(v ServiceType) string {
	return label(serviceTypeLabels, v, "Not specified")
}

func StatusLabel(v Status) string {
	return label(statusLabels, v, "Initial Contact")
}

func PriorityLabel(v Priority) string {
	return label(priorityLabels, v, "Medium")
}

func BudgetLabel(v Budget) string {
	return label(budgetLabels, v, "Not specified")
}

func ReferralLabel(v ReferralSource) string {
	return label(referralLabels, v, "Not specified")
}

func UrgencyLabel(v Urgency) string {
	return label(urgencyLabels, v, "")
}

func ContactPreferenceLabel(v string) string {
	return label(contactPreferenceLabels, v, "")
}

func ContactTimeLabel(v string) string {
	return label(contactTimeLabels, v, "")
}

// label looks v up in table, falling back to v itself and then to def.
func label[K ~string](table map[K]string, v K, def string) string {
	if l, ok := table[v]; ok {
		return l
	}
	if v != "" {
		return string(v)
	}
	return def
}

// ServiceTypeLabels exposes the label table for reverse lookups.
func ServiceTypeLabels() map[ServiceType]string { return serviceTypeLabels }

// StatusLabels exposes the label table for reverse lookups.
func StatusLabels() map[Status]string { return statusLabels }

// BudgetLabels exposes the label table for reverse lookups.
func BudgetLabels() map[Budget]string { return budgetLabels }

// ReferralLabels exposes the label table for reverse lookups.
func ReferralLabels() map[ReferralSource]string { return referralLabels }
