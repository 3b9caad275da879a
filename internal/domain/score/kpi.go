package score

import "github.com/okian/salesboard/internal/domain/model"

// DefaultProfileName is the target profile applied when a member has no
// profile assignment or the assigned profile is unknown.
const DefaultProfileName = "standard"

// KPI keys.
const (
	KPIDeals      = "deals"
	KPICalls      = "calls"
	KPICVSent     = "cv_sent"
	KPIInterviews = "interviews"
	KPIMeetings   = "meetings"
)

// DefaultKPIs returns the tracked KPI set. The deals KPI sources its
// actual from the placement scan; the rest from raw activity-name counts.
func DefaultKPIs() []model.KPIDefinition {
	return []model.KPIDefinition{
		{Key: KPIDeals, Label: "Deals", FromDealScan: true},
		{Key: KPICalls, Label: "Outbound calls", ActivityNames: []string{
			"OUTBOUND_CALL_CANDIDATE_CONNECTED",
			"OUTBOUND_CALL_CONTACT_CONNECTED",
			"OUTBOUND_CALL_NO_ANSWER",
		}},
		{Key: KPICVSent, Label: "CVs sent", ActivityNames: []string{
			"CV_SENT_TO_CLIENT",
		}},
		{Key: KPIInterviews, Label: "Interviews", ActivityNames: []string{
			"INTERVIEW_FIRST_SCHEDULED",
			"INTERVIEW_STAGE_ADVANCED",
		}},
		{Key: KPIMeetings, Label: "Meetings", ActivityNames: []string{
			"MEETING_ARRANGED",
		}},
	}
}

// DefaultProfile returns the standard monthly targets.
func DefaultProfile() model.TargetProfile {
	return model.TargetProfile{
		Name: DefaultProfileName,
		Targets: map[string]int{
			KPIDeals:      2,
			KPICalls:      700,
			KPICVSent:     40,
			KPIInterviews: 20,
			KPIMeetings:   10,
		},
	}
}
