package preply

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Node type discriminators understood by Classify.
const (
	TypeLesson   = "LessonTimeslot"
	TypeReserved = "ReservedRecurrentLessonTimeslot"
	TypeTimeoff  = "TimeoffTimeslot"
)

// Node is one raw calendar entry as returned by the API. Only the fields
// needed for classification are decoded; the rest of the record is ignored.
type Node struct {
	Typename  string `json:"__typename"`
	ID        ID     `json:"id"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`

	// TimeoffTimeslot.
	Title *string `json:"title"`

	// LessonTimeslot.
	Lesson *Lesson `json:"lesson"`

	// ReservedRecurrentLessonTimeslot.
	RecurrentLessonConfig *RecurrentLessonConfig `json:"recurrentLessonConfig"`
}

type Lesson struct {
	ID     ID            `json:"id"`
	Status string        `json:"status"`
	Client *LessonClient `json:"client"`
}

type RecurrentLessonConfig struct {
	Client *LessonClient `json:"client"`
}

// LessonClient is the student attached to a lesson or recurring config.
type LessonClient struct {
	User *User `json:"user"`
}

type User struct {
	FullName string `json:"fullName"`
}

// FullName returns the client's display name, or "" if any link is missing.
func (c *LessonClient) FullName() string {
	if c == nil || c.User == nil {
		return ""
	}
	return c.User.FullName
}

// ID is a GraphQL identifier. The API usually sends strings, but numeric
// ids are accepted and kept in their decimal text form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// calendarResponse mirrors data.currentUser.tutor.calendar.nodes. Every
// level is a pointer so a missing branch can be told apart from an empty list.
type calendarResponse struct {
	Data *struct {
		CurrentUser *struct {
			Tutor *struct {
				Calendar *struct {
					Nodes []Node `json:"nodes"`
				} `json:"calendar"`
			} `json:"tutor"`
		} `json:"currentUser"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// nodes returns the node list, or ok=false if the path is absent.
func (r *calendarResponse) nodes() (nodes []Node, ok bool) {
	if r.Data == nil || r.Data.CurrentUser == nil || r.Data.CurrentUser.Tutor == nil {
		return nil, false
	}
	cal := r.Data.CurrentUser.Tutor.Calendar
	if cal == nil {
		return nil, false
	}
	return cal.Nodes, true
}
