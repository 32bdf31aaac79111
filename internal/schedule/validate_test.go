package schedule

import (
	"testing"

	"github.com/padelhq/club-reservation/internal/model"
)

func validCourtActivity() *model.Activity {
	return &model.Activity{
		Type:      model.TypeCourt,
		Title:     "Open doubles",
		Rule:      "RRULE:FREQ=WEEKLY;BYDAY=MO",
		StartTime: "18:00",
		EndTime:   "19:30",
		Capacity:  8,
	}
}

func TestValidateActivity(t *testing.T) {
	eventID := uint64(3)
	cases := []struct {
		name      string
		mutate    func(a *model.Activity)
		wantField string // "" means valid
	}{
		{"valid court", func(a *model.Activity) {}, ""},
		{"valid private", func(a *model.Activity) {
			a.Type = model.TypePrivate
			a.Capacity = 2
		}, ""},
		{"valid clinic", func(a *model.Activity) {
			a.Type = model.TypeClinic
			a.EventID = &eventID
		}, ""},
		{"unknown type", func(a *model.Activity) { a.Type = "lesson" }, "type"},
		{"empty rule", func(a *model.Activity) { a.Rule = "" }, ""},
		{"malformed rule", func(a *model.Activity) { a.Rule = "RRULE:FREQ=FORTNIGHTLY" }, "rule"},
		{"clinic without event", func(a *model.Activity) { a.Type = model.TypeClinic }, "event_id"},
		{"court with event", func(a *model.Activity) { a.EventID = &eventID }, "event_id"},
		{"malformed start", func(a *model.Activity) { a.StartTime = "6pm" }, "start_time"},
		{"off-grid start", func(a *model.Activity) { a.StartTime = "18:15" }, "start_time"},
		{"start after end", func(a *model.Activity) { a.StartTime = "20:00"; a.EndTime = "19:00" }, "start_time"},
		{"before opening", func(a *model.Activity) { a.StartTime = "05:30"; a.EndTime = "07:00" }, "start_time"},
		{"past closing", func(a *model.Activity) { a.StartTime = "21:00"; a.EndTime = "22:30" }, "start_time"},
		{"zero capacity", func(a *model.Activity) { a.Capacity = 0 }, "capacity"},
		{"oversized private", func(a *model.Activity) {
			a.Type = model.TypePrivate
			a.Capacity = 5
		}, "capacity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := validCourtActivity()
			tc.mutate(a)
			err := ValidateActivity(a, 4)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("want valid, got %v", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("want *ValidationError, got %v", err)
			}
			if ve.Field != tc.wantField {
				t.Fatalf("flagged field %q, want %q", ve.Field, tc.wantField)
			}
		})
	}
}
