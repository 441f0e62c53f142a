package planner

import "sort"

// Occupancy tracks intervals already claimed within one planning week.
type Occupancy struct {
	byDay map[Day][]TimeInterval
}

// NewOccupancy builds an occupancy seeded with intervals.
func NewOccupancy(intervals ...TimeInterval) *Occupancy {
	o := &Occupancy{byDay: make(map[Day][]TimeInterval)}
	for _, iv := range intervals {
		o.Add(iv)
	}
	return o
}

// IsFree reports whether interval conflicts with nothing already added.
func (o *Occupancy) IsFree(interval TimeInterval) bool {
	for _, existing := range o.byDay[interval.Day()] {
		if Conflicts(existing, interval) {
			return false
		}
	}
	return true
}

// Add records interval. Callers check IsFree first.
func (o *Occupancy) Add(interval TimeInterval) {
	if interval.IsZero() {
		return
	}
	o.byDay[interval.Day()] = append(o.byDay[interval.Day()], interval)
}

// Remove drops one occurrence of interval and reports whether it was present.
func (o *Occupancy) Remove(interval TimeInterval) bool {
	bucket := o.byDay[interval.Day()]
	for i, existing := range bucket {
		if existing == interval {
			o.byDay[interval.Day()] = append(bucket[:i:i], bucket[i+1:]...)
			return true
		}
	}
	return false
}

// Intervals lists every occupied interval ordered by day then start.
func (o *Occupancy) Intervals() []TimeInterval {
	out := make([]TimeInterval, 0)
	for _, bucket := range o.byDay {
		out = append(out, bucket...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day() != out[j].Day() {
			return out[i].Day() < out[j].Day()
		}
		return out[i].Start() < out[j].Start()
	})
	return out
}

// Len returns the number of occupied intervals.
func (o *Occupancy) Len() int {
	n := 0
	for _, bucket := range o.byDay {
		n += len(bucket)
	}
	return n
}

// Clone returns an independent copy.
func (o *Occupancy) Clone() *Occupancy {
	c := &Occupancy{byDay: make(map[Day][]TimeInterval, len(o.byDay))}
	for day, bucket := range o.byDay {
		c.byDay[day] = append([]TimeInterval(nil), bucket...)
	}
	return c
}
