package classify_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/eventcrawl/internal/classify"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.June, day, hour, minute, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{
			name:  "thirty hours is a festival",
			start: at(6, 12, 0),
			end:   at(7, 18, 0),
			want:  classify.LabelFestival,
		},
		{
			name:  "exactly 24 hours is a festival",
			start: at(6, 20, 0),
			end:   at(7, 20, 0),
			want:  classify.LabelFestival,
		},
		{
			name:  "afternoon start running past 3am",
			start: at(6, 14, 0),
			end:   at(7, 4, 0),
			want:  classify.LabelDayIntoNight,
		},
		{
			name:  "13:00 to 23:00 same day counts as day into night",
			start: at(6, 13, 0),
			end:   at(6, 23, 0),
			want:  classify.LabelDayIntoNight,
		},
		{
			name:  "classic club night 21:00 to 04:00",
			start: at(6, 21, 0),
			end:   at(7, 4, 0),
			want:  classify.LabelClubNight,
		},
		{
			name:  "club night with midnight start",
			start: at(7, 0, 0),
			end:   at(7, 6, 0),
			want:  classify.LabelClubNight,
		},
		{
			name:  "club night beats early night on overlap",
			start: at(6, 21, 30),
			end:   at(7, 3, 0),
			want:  classify.LabelClubNight,
		},
		{
			name:  "early evening ending before 3am",
			start: at(6, 19, 0),
			end:   at(7, 2, 0),
			want:  classify.LabelEarlyNight,
		},
		{
			name:  "early evening ending at 23:00",
			start: at(6, 18, 0),
			end:   at(6, 23, 0),
			want:  classify.LabelEarlyNight,
		},
		{
			name:  "afternoon party ending before dark",
			start: at(6, 12, 0),
			end:   at(6, 19, 0),
			want:  classify.LabelDayParty,
		},
		{
			name:  "morning start is afters",
			start: at(6, 5, 0),
			end:   at(6, 9, 0),
			want:  classify.LabelAfters,
		},
		{
			name:  "short small-hours event matches nothing",
			start: at(6, 2, 0),
			end:   at(6, 2, 30),
			want:  classify.LabelUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classify.Classify(tt.start, tt.end)
			if got != tt.want {
				t.Fatalf("Classify(%v, %v) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestFromStrings(t *testing.T) {
	t.Parallel()

	got := classify.FromStrings("2025-06-06T21:00:00Z", "2025-06-07T04:00:00Z")
	if got != classify.LabelClubNight {
		t.Fatalf("FromStrings() = %q, want %q", got, classify.LabelClubNight)
	}

	if got := classify.FromStrings("not-a-time", "2025-06-07T04:00:00Z"); got != classify.LabelUnknown {
		t.Fatalf("FromStrings() with bad start = %q, want %q", got, classify.LabelUnknown)
	}

	if got := classify.FromStrings("2025-06-06T21:00:00Z", ""); got != classify.LabelUnknown {
		t.Fatalf("FromStrings() with bad end = %q, want %q", got, classify.LabelUnknown)
	}
}
