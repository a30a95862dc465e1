package service

import (
	"sort"
	"time"

	"github.com/shubukan/shubukan-backend/internal/model"
)

// AvailabilityStatus enumerates the temporal states of an exam as seen by a
// polling candidate.
type AvailabilityStatus string

const (
	AvailabilityLive     AvailabilityStatus = "LIVE"
	AvailabilityWaiting  AvailabilityStatus = "WAITING"
	AvailabilityExpired  AvailabilityStatus = "EXPIRED"
	AvailabilityNotFound AvailabilityStatus = "NOT_FOUND"
)

// WaitingInfo describes the next upcoming set of an exam.
type WaitingInfo struct {
	ExamID           string    `json:"exam_id"`
	SetNumber        int       `json:"set_number"`
	ScheduledStart   time.Time `json:"scheduled_start"`
	SecondsRemaining int64     `json:"seconds_remaining"`
}

// ExpiredInfo identifies a set whose window has closed.
type ExpiredInfo struct {
	ExamID    string `json:"exam_id"`
	SetNumber int    `json:"set_number"`
}

// Availability is the outcome of resolving an exam identifier at one instant.
type Availability struct {
	Status  AvailabilityStatus `json:"status"`
	Paper   *model.ExamPaper   `json:"exam,omitempty"`
	Waiting *WaitingInfo       `json:"waiting,omitempty"`
	Expired *ExpiredInfo       `json:"expired,omitempty"`
}

// SetPartition buckets the sets of one exam by temporal state at one instant.
//
// Live is in preference order: scheduled sets before on-demand public ones,
// scheduled sets by earliest start. Future is ordered by ascending start,
// Expired by ascending window end.
type SetPartition struct {
	Live    []model.ExamSet
	Future  []model.ExamSet
	Expired []model.ExamSet
}

// PartitionSets classifies sets relative to now. A set with no scheduled start
// is an on-demand public set and is always live. Scheduled sets are live inside
// [start, start+duration), future before it, expired at or after its end.
//
// Pure function of (sets, now); safe to call on every waiting-room poll.
func PartitionSets(sets []model.ExamSet, now time.Time) SetPartition {
	var p SetPartition
	for _, s := range sets {
		if s.ScheduledStart == nil {
			p.Live = append(p.Live, s)
			continue
		}
		start := *s.ScheduledStart
		end := start.Add(time.Duration(s.DurationMinutes) * time.Minute)
		switch {
		case now.Before(start):
			p.Future = append(p.Future, s)
		case now.Before(end):
			p.Live = append(p.Live, s)
		default:
			p.Expired = append(p.Expired, s)
		}
	}

	sort.SliceStable(p.Live, func(i, j int) bool {
		a, b := p.Live[i], p.Live[j]
		switch {
		case a.ScheduledStart == nil && b.ScheduledStart == nil:
			return a.SetNumber < b.SetNumber
		case a.ScheduledStart == nil:
			return false // scheduled sets win over on-demand
		case b.ScheduledStart == nil:
			return true
		default:
			return a.ScheduledStart.Before(*b.ScheduledStart)
		}
	})
	sort.SliceStable(p.Future, func(i, j int) bool {
		return p.Future[i].ScheduledStart.Before(*p.Future[j].ScheduledStart)
	})
	sort.SliceStable(p.Expired, func(i, j int) bool {
		return p.Expired[i].ScheduledEnd().Before(*p.Expired[j].ScheduledEnd())
	})
	return p
}

// SecondsUntil returns the whole seconds from now until start, floored,
// clamped at zero.
func SecondsUntil(start, now time.Time) int64 {
	d := start.Sub(now)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
