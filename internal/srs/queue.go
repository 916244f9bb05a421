package srs

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// QueueEntry is one candidate card for queue construction.
type QueueEntry struct {
	FlashcardID uuid.UUID
	State       State
}

// QueueItem is one due card, ranked and classified.
type QueueItem struct {
	FlashcardID        uuid.UUID
	State              State
	Maturity           Maturity
	DaysOverdue        int
	EstimatedRetention float64
}

// QueueStats aggregates the FULL due set, not the truncated batch.
type QueueStats struct {
	TotalDue      int
	NewDue        int
	LearningDue   int
	YoungDue      int
	MatureDue     int
	MeanRetention float64
}

// Queue is an ordered review batch plus due-set statistics.
type Queue struct {
	Items []QueueItem
	Stats QueueStats
}

// BuildQueue filters entries to those due at now, ranks them most-overdue
// first (ties broken by lower estimated retention), and truncates the item
// list to maxSize. Truncation is a presentation limit only: stats always
// cover every due entry, and nothing here mutates state.
func BuildQueue(entries []QueueEntry, now time.Time, maxSize int, p Params) Queue {
	p = p.withDefaults()
	if maxSize <= 0 {
		maxSize = DefaultQueueSize
	}

	due := make([]QueueItem, 0, len(entries))
	for _, e := range entries {
		if !e.State.IsDue(now) {
			continue
		}
		cls := Classify(e.State, now, p)
		due = append(due, QueueItem{
			FlashcardID:        e.FlashcardID,
			State:              e.State,
			Maturity:           cls.Maturity,
			DaysOverdue:        e.State.DaysOverdue(now),
			EstimatedRetention: cls.EstimatedRetention,
		})
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].DaysOverdue != due[j].DaysOverdue {
			return due[i].DaysOverdue > due[j].DaysOverdue
		}
		return due[i].EstimatedRetention < due[j].EstimatedRetention
	})

	stats := queueStats(due)
	if len(due) > maxSize {
		due = due[:maxSize]
	}
	return Queue{Items: due, Stats: stats}
}

func queueStats(due []QueueItem) QueueStats {
	stats := QueueStats{TotalDue: len(due)}
	if len(due) == 0 {
		return stats
	}
	var retentionSum float64
	for _, item := range due {
		retentionSum += item.EstimatedRetention
		switch item.Maturity {
		case MaturityNew:
			stats.NewDue++
		case MaturityLearning:
			stats.LearningDue++
		case MaturityYoung:
			stats.YoungDue++
		case MaturityMature:
			stats.MatureDue++
		}
	}
	stats.MeanRetention = retentionSum / float64(len(due))
	return stats
}
