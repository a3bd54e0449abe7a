package models

// Task priorities understood by the tracker. Higher is more important.
const (
	PriorityHigh   = 3
	PriorityNormal = 2
	PriorityLow    = 1
)

// Member is a tracker workspace member.
type Member struct {
	ID    int64
	Email string
}

// AssigneeMap maps attendee emails to tracker user ids.
// A zero id means the email has no tracker account.
type AssigneeMap map[string]int64

// NewAssigneeMap correlates the given emails with the tracker members.
// Every email appears in the map, unresolved ones with a zero id.
func NewAssigneeMap(emails []string, members []Member) AssigneeMap {
	byEmail := make(map[string]int64, len(members))
	for _, m := range members {
		byEmail[m.Email] = m.ID
	}
	result := make(AssigneeMap, len(emails))
	for _, email := range emails {
		result[email] = byEmail[email]
	}
	return result
}

// Task is the outbound payload for one meeting.
type Task struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TimeEstimate int64    `json:"time_estimate"`
	StartDate    int64    `json:"start_date"`
	DueDate      int64    `json:"due_date"`
	Assignees    []int64  `json:"assignees"`
	Priority     int      `json:"priority"`
	Tags         []string `json:"tags"`
}
