package planner

import (
	"sort"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

// Block is an editable declared-availability block with its hour categories.
type Block struct {
	ID            string
	Interval      TimeInterval
	InPersonHours float64
	RemoteHours   float64
}

// MergeResult is the block set produced by MergeBlock.
type MergeResult struct {
	Merged   Block
	Absorbed []string
	Blocks   []Block
}

// MergeBlock folds candidate into existing, absorbing every block on the same day
// that overlaps or touches it, transitively. The block being edited (editingID)
// is replaced rather than absorbed. Hour categories are summed across the cluster
// and the merged block receives a fresh id from newID.
func MergeBlock(existing []Block, candidate Block, editingID string, newID func() string) (MergeResult, error) {
	if candidate.Interval.Duration() <= 0 {
		return MergeResult{}, appErrors.Clone(appErrors.ErrInvalidInterval, "availability block must have a positive duration")
	}

	day := candidate.Interval.Day()
	span := candidate.Interval
	pending := make([]Block, 0, len(existing))
	untouched := make([]Block, 0, len(existing))
	for _, b := range existing {
		switch {
		case editingID != "" && b.ID == editingID:
			continue
		case b.Interval.Day() != day:
			untouched = append(untouched, b)
		default:
			pending = append(pending, b)
		}
	}

	merged := Block{InPersonHours: candidate.InPersonHours, RemoteHours: candidate.RemoteHours}
	var absorbed []string
	for changed := true; changed; {
		changed = false
		rest := pending[:0:0]
		for _, b := range pending {
			if Touches(span, b.Interval) {
				grown, err := IntervalBetween(day, min(span.Start(), b.Interval.Start()), max(span.End(), b.Interval.End()))
				if err != nil {
					return MergeResult{}, err
				}
				span = grown
				merged.InPersonHours += b.InPersonHours
				merged.RemoteHours += b.RemoteHours
				absorbed = append(absorbed, b.ID)
				changed = true
				continue
			}
			rest = append(rest, b)
		}
		pending = rest
	}

	merged.Interval = span
	merged.ID = newID()

	blocks := append(untouched, pending...)
	blocks = append(blocks, merged)
	sortBlocks(blocks)

	return MergeResult{Merged: merged, Absorbed: absorbed, Blocks: blocks}, nil
}

// TotalMinutes sums the durations of blocks.
func TotalMinutes(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += b.Interval.Duration()
	}
	return total
}

// BlockWindows converts blocks into availability windows.
func BlockWindows(blocks []Block, preferredSites []string, monthlyLimit float64) []AvailabilityWindow {
	windows := make([]AvailabilityWindow, 0, len(blocks))
	for _, b := range blocks {
		windows = append(windows, AvailabilityWindow{
			Interval:         b.Interval,
			PreferredSites:   preferredSites,
			MonthlyHourLimit: monthlyLimit,
		})
	}
	return windows
}

func sortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i].Interval, blocks[j].Interval
		if a.Day() != b.Day() {
			return a.Day() < b.Day()
		}
		return a.Start() < b.Start()
	})
}
