package classify

// Score categories. Source values are external strings, so membership is
// test-enforced rather than type-enforced.
const (
	CategoryDeals      = "deals-revenue"
	CategoryCalls      = "calls"
	CategoryOutreach   = "outreach"
	CategoryInterviews = "interviews"
	CategoryMeetings   = "meetings"
	CategoryAdmin      = "admin"
)

// entry is one classification table row.
type entry struct {
	category string
	points   int
}

// activityNames maps exact CRM activity names to category and points.
// Most specific: a name encodes direction and outcome.
var activityNames = map[string]entry{
	"PLACEMENT_PERMANENT":               {CategoryDeals, 500},
	"PLACEMENT_CONTRACT":                {CategoryDeals, 400},
	"OUTBOUND_CALL_CANDIDATE_CONNECTED": {CategoryCalls, 10},
	"OUTBOUND_CALL_CONTACT_CONNECTED":   {CategoryCalls, 15},
	"OUTBOUND_CALL_NO_ANSWER":           {CategoryCalls, 2},
	"INBOUND_CALL_ANSWERED":             {CategoryCalls, 5},
	"CV_SENT_TO_CLIENT":                 {CategoryOutreach, 25},
	"JOB_ORDER_RECEIVED":                {CategoryOutreach, 30},
	"LEAD_QUALIFIED":                    {CategoryOutreach, 20},
	"INTERVIEW_FIRST_SCHEDULED":         {CategoryInterviews, 50},
	"INTERVIEW_STAGE_ADVANCED":          {CategoryInterviews, 40},
	"MEETING_ARRANGED":                  {CategoryMeetings, 60},
	"NOTE_ADDED":                        {CategoryAdmin, 1},
}

// typeKeys maps "category:entitytype" pairs (lowercased) to category and
// points. Consulted only when the activity name is unknown.
var typeKeys = map[string]entry{
	"appointment:clientcontact": {CategoryMeetings, 20},
	"appointment:candidate":     {CategoryInterviews, 15},
	"call:candidate":            {CategoryCalls, 5},
	"call:clientcontact":        {CategoryCalls, 8},
	"message:candidate":         {CategoryOutreach, 3},
	"message:clientcontact":     {CategoryOutreach, 4},
	"note:candidate":            {CategoryAdmin, 1},
	"note:clientcontact":        {CategoryAdmin, 2},
	"task:candidate":            {CategoryAdmin, 1},
}

// bonusNames is the allow-list of outbound contact calls eligible for the
// promotional-weekday multiplier.
var bonusNames = map[string]bool{
	"OUTBOUND_CALL_CANDIDATE_CONNECTED": true,
	"OUTBOUND_CALL_CONTACT_CONNECTED":   true,
}

// notableNames is the allow-list captured into the recent-wins feed.
var notableNames = map[string]bool{
	"PLACEMENT_PERMANENT":       true,
	"PLACEMENT_CONTRACT":        true,
	"INTERVIEW_FIRST_SCHEDULED": true,
	"INTERVIEW_STAGE_ADVANCED":  true,
	"MEETING_ARRANGED":          true,
}

// ActivityNamesFor returns the table names classified into a category.
// Used to bind KPI definitions to raw activity-name counts.
func ActivityNamesFor(category string) []string {
	var names []string
	for name, e := range activityNames {
		if e.category == category {
			names = append(names, name)
		}
	}
	return names
}
