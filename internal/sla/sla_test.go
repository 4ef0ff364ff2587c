package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		deadline time.Time
		want     Urgency
	}{
		{"long past", now.Add(-3 * time.Hour), Expired},
		{"one nanosecond past", now.Add(-time.Nanosecond), Expired},
		{"exactly now", now, Critical},
		{"thirty minutes", now.Add(30 * time.Minute), Critical},
		{"just under an hour", now.Add(time.Hour - time.Nanosecond), Critical},
		{"exactly one hour", now.Add(time.Hour), Warning},
		{"ninety minutes", now.Add(90 * time.Minute), Warning},
		{"exactly two hours", now.Add(2 * time.Hour), OnTime},
		{"three hours", now.Add(3 * time.Hour), OnTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.deadline, now))
		})
	}
}

func TestClassifyPartitionsTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := Expired
	for offset := -4 * time.Hour; offset <= 4*time.Hour; offset += time.Minute {
		got := Classify(now.Add(offset), now)
		require.GreaterOrEqual(t, int(got), int(Expired))
		require.LessOrEqual(t, int(got), int(OnTime))
		require.GreaterOrEqual(t, int(got), int(prev), "urgency must not decrease as the deadline moves out")
		prev = got
	}
}

func TestParseUrgency(t *testing.T) {
	for _, u := range []Urgency{Expired, Critical, Warning, OnTime} {
		parsed, err := ParseUrgency(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, parsed)
	}
	_, err := ParseUrgency("soon")
	assert.Error(t, err)
}
