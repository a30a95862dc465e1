package service

import (
	"testing"
	"time"

	"github.com/shubukan/shubukan-backend/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func scheduledSet(number int, start time.Time, durationMin int) model.ExamSet {
	return model.ExamSet{
		ExamID:          "KYU4A1",
		SetNumber:       number,
		ScheduledStart:  timePtr(start),
		DurationMinutes: durationMin,
		AccessPolicy:    model.AccessAllInstructors,
	}
}

func TestPartitionSetsBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sets := []model.ExamSet{
		scheduledSet(1, now.Add(-2*time.Hour), 60),  // expired
		scheduledSet(2, now.Add(-10*time.Minute), 60), // live
		scheduledSet(3, now.Add(time.Hour), 60),     // future
		{ExamID: "KYU4A1", SetNumber: 4, AccessPolicy: model.AccessPublic}, // on-demand, always live
	}

	p := PartitionSets(sets, now)

	if len(p.Live) != 2 || len(p.Future) != 1 || len(p.Expired) != 1 {
		t.Fatalf("partition sizes = %d/%d/%d, want 2/1/1",
			len(p.Live), len(p.Future), len(p.Expired))
	}
	if p.Live[0].SetNumber != 2 {
		t.Errorf("scheduled live set should be preferred over on-demand, got set %d", p.Live[0].SetNumber)
	}
	if p.Future[0].SetNumber != 3 {
		t.Errorf("future set = %d, want 3", p.Future[0].SetNumber)
	}
	if p.Expired[0].SetNumber != 1 {
		t.Errorf("expired set = %d, want 1", p.Expired[0].SetNumber)
	}
}

func TestPartitionSetsWindowBoundaries(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	set := scheduledSet(1, start, 30)
	end := start.Add(30 * time.Minute)

	tests := []struct {
		name string
		now  time.Time
		want func(SetPartition) bool
	}{
		{"instant before start", start.Add(-time.Nanosecond), func(p SetPartition) bool { return len(p.Future) == 1 }},
		{"exactly at start", start, func(p SetPartition) bool { return len(p.Live) == 1 }},
		{"instant before end", end.Add(-time.Nanosecond), func(p SetPartition) bool { return len(p.Live) == 1 }},
		{"exactly at end", end, func(p SetPartition) bool { return len(p.Expired) == 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PartitionSets([]model.ExamSet{set}, tt.now)
			if !tt.want(p) {
				t.Errorf("unexpected partition %d/%d/%d at %v",
					len(p.Live), len(p.Future), len(p.Expired), tt.now)
			}
		})
	}
}

func TestPartitionSetsLiveOrdering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sets := []model.ExamSet{
		scheduledSet(1, now.Add(-5*time.Minute), 60),
		scheduledSet(2, now.Add(-30*time.Minute), 60),
		scheduledSet(3, now.Add(-15*time.Minute), 60),
	}

	p := PartitionSets(sets, now)
	if len(p.Live) != 3 {
		t.Fatalf("live count = %d, want 3", len(p.Live))
	}
	want := []int{2, 3, 1} // earliest start first
	for i, n := range want {
		if p.Live[i].SetNumber != n {
			t.Errorf("live[%d] = set %d, want %d", i, p.Live[i].SetNumber, n)
		}
	}
}

func TestPartitionSetsFutureOrdering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sets := []model.ExamSet{
		scheduledSet(1, now.Add(3*time.Hour), 60),
		scheduledSet(2, now.Add(time.Hour), 60),
	}

	p := PartitionSets(sets, now)
	if len(p.Future) != 2 || p.Future[0].SetNumber != 2 {
		t.Errorf("countdown should target the earliest upcoming set, got set %d", p.Future[0].SetNumber)
	}
}

func TestSecondsUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  int64
	}{
		{"whole seconds", now.Add(90 * time.Second), 90},
		{"fraction floors", now.Add(90*time.Second + 700*time.Millisecond), 90},
		{"already started clamps to zero", now.Add(-time.Minute), 0},
		{"exactly now", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondsUntil(tt.start, now); got != tt.want {
				t.Errorf("SecondsUntil = %d, want %d", got, tt.want)
			}
		})
	}
}
