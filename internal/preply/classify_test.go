package preply

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeNode(t *testing.T, raw string) Node {
	t.Helper()
	var n Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return n
}

func lessonNode(status string) string {
	return `{
		"__typename": "LessonTimeslot",
		"id": "slot-1",
		"dateStart": "2024-05-01T10:00:00Z",
		"dateEnd": "2024-05-01T11:00:00Z",
		"lesson": {"id": "42", "status": "` + status + `", "client": {"user": {"fullName": "Jane Doe"}}}
	}`
}

func TestClassifyLesson(t *testing.T) {
	for _, status := range []string{"BOOKED", "SCHEDULED"} {
		t.Run(status, func(t *testing.T) {
			got, ok := Classify(decodeNode(t, lessonNode(status)), "Preply").Get()
			require.True(t, ok)
			assert.Equal(t, KindLesson, got.Kind)
			assert.Equal(t, "Jane Doe Preply", got.Summary)
			assert.Equal(t, "lesson:42:2024-05-01T10:00:00Z_2024-05-01T11:00:00Z", got.IdentityKey)
			assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got.Start)
			assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), got.End)
		})
	}
}

func TestClassifyLessonRejectsOtherStatuses(t *testing.T) {
	for _, status := range []string{"CANCELLED", "COMPLETED", "PENDING", "booked", ""} {
		t.Run(status, func(t *testing.T) {
			assert.True(t, Classify(decodeNode(t, lessonNode(status)), "Preply").IsAbsent())
		})
	}
}

func TestClassifyLessonMissingParts(t *testing.T) {
	noLesson := `{"__typename": "LessonTimeslot", "dateStart": "2024-05-01T10:00:00Z", "dateEnd": "2024-05-01T11:00:00Z"}`
	assert.True(t, Classify(decodeNode(t, noLesson), "Preply").IsAbsent())

	noClient := `{"__typename": "LessonTimeslot", "dateStart": "2024-05-01T10:00:00Z", "dateEnd": "2024-05-01T11:00:00Z",
		"lesson": {"id": "1", "status": "BOOKED"}}`
	assert.True(t, Classify(decodeNode(t, noClient), "Preply").IsAbsent())

	noID := `{"__typename": "LessonTimeslot", "dateStart": "2024-05-01T10:00:00Z", "dateEnd": "2024-05-01T11:00:00Z",
		"lesson": {"status": "BOOKED", "client": {"user": {"fullName": "Ann"}}}}`
	got, ok := Classify(decodeNode(t, noID), "Preply").Get()
	require.True(t, ok)
	assert.Equal(t, "lesson:unknown:2024-05-01T10:00:00Z_2024-05-01T11:00:00Z", got.IdentityKey)
}

func TestClassifyReserved(t *testing.T) {
	raw := `{
		"__typename": "ReservedRecurrentLessonTimeslot",
		"id": 77,
		"dateStart": "2024-05-02T08:00:00+00:00",
		"dateEnd": "2024-05-02T08:50:00+00:00",
		"recurrentLessonConfig": {"client": {"user": {"fullName": "Bob Roe"}}}
	}`
	got, ok := Classify(decodeNode(t, raw), "Preply").Get()
	require.True(t, ok)
	assert.Equal(t, KindReserved, got.Kind)
	assert.Equal(t, "r Bob Roe Preply", got.Summary)
	assert.Equal(t, "reserved:77:2024-05-02T08:00:00+00:00_2024-05-02T08:50:00+00:00", got.IdentityKey)

	missing := `{"__typename": "ReservedRecurrentLessonTimeslot", "id": "77",
		"dateStart": "2024-05-02T08:00:00Z", "dateEnd": "2024-05-02T08:50:00Z"}`
	assert.True(t, Classify(decodeNode(t, missing), "Preply").IsAbsent())
}

func TestClassifyTimeoff(t *testing.T) {
	untitled := `{"__typename": "TimeoffTimeslot", "id": "t1",
		"dateStart": "2024-05-03T00:00:00Z", "dateEnd": "2024-05-03T06:00:00Z"}`
	got, ok := Classify(decodeNode(t, untitled), "Preply").Get()
	require.True(t, ok)
	assert.Equal(t, "Time off Preply", got.Summary)
	assert.Equal(t, "timeoff:t1:2024-05-03T00:00:00Z_2024-05-03T06:00:00Z", got.IdentityKey)

	titled := `{"__typename": "TimeoffTimeslot", "id": "t2", "title": "Dentist",
		"dateStart": "2024-05-03T00:00:00Z", "dateEnd": "2024-05-03T06:00:00Z"}`
	got, ok = Classify(decodeNode(t, titled), "Preply").Get()
	require.True(t, ok)
	assert.Equal(t, "Dentist Preply", got.Summary)

	nullTitle := `{"__typename": "TimeoffTimeslot", "id": "t3", "title": null,
		"dateStart": "2024-05-03T00:00:00Z", "dateEnd": "2024-05-03T06:00:00Z"}`
	got, ok = Classify(decodeNode(t, nullTitle), "Preply").Get()
	require.True(t, ok)
	assert.Equal(t, "Time off Preply", got.Summary)
}

func TestClassifyUnknownTypes(t *testing.T) {
	for _, raw := range []string{
		`{"__typename": "UnknownFutureType", "id": "x", "dateStart": "2024-05-03T00:00:00Z", "dateEnd": "2024-05-03T06:00:00Z"}`,
		`{"id": "x", "dateStart": "2024-05-03T00:00:00Z", "dateEnd": "2024-05-03T06:00:00Z"}`,
	} {
		assert.True(t, Classify(decodeNode(t, raw), "Preply").IsAbsent())
	}
}

func TestClassifyConvertsOffsetsToUTC(t *testing.T) {
	raw := `{"__typename": "TimeoffTimeslot", "id": "t1",
		"dateStart": "2024-05-03T10:00:00-05:00", "dateEnd": "2024-05-03T12:00:00-05:00"}`
	got, ok := Classify(decodeNode(t, raw), "").Get()
	require.True(t, ok)
	assert.Equal(t, "Time off", got.Summary)
	assert.Equal(t, time.UTC, got.Start.Location())
	assert.Equal(t, 15, got.Start.Hour())
}

func TestClassifyBadTimestamps(t *testing.T) {
	for _, raw := range []string{
		`{"__typename": "TimeoffTimeslot", "id": "t1", "dateStart": "tomorrow", "dateEnd": "2024-05-03T06:00:00Z"}`,
		`{"__typename": "TimeoffTimeslot", "id": "t1", "dateStart": "2024-05-03T06:00:00Z"}`,
		`{"__typename": "TimeoffTimeslot", "id": "t1", "dateStart": "2024-05-03T06:00:00Z", "dateEnd": "2024-05-03T05:00:00Z"}`,
	} {
		assert.True(t, Classify(decodeNode(t, raw), "Preply").IsAbsent(), raw)
	}
}

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "abc", "b": 12345, "c": null}`), &v))
	assert.Equal(t, ID("abc"), v.A)
	assert.Equal(t, ID("12345"), v.B)
	assert.Equal(t, ID(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}

func TestLessonClientFullName(t *testing.T) {
	var missing *LessonClient
	assert.Equal(t, "", missing.FullName())
	assert.Equal(t, "", (&LessonClient{}).FullName())
	assert.Equal(t, "Jane Doe", (&LessonClient{User: &User{FullName: "Jane Doe"}}).FullName())

	n := decodeNode(t, lessonNode("BOOKED"))
	require.NotNil(t, n.Lesson)
	assert.Equal(t, "Jane Doe", n.Lesson.Client.FullName())
}
