package pricing

import (
	"fmt"
	"time"
)

type Breakdown struct {
	TotalHours int64
	Days       int64
	Hours      int64
}

func NewBreakdown(d time.Duration) Breakdown {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Hour)
	return Breakdown{TotalHours: total, Days: total / 24, Hours: total % 24}
}

// String is the long form shown on order cards.
func (b Breakdown) String() string {
	return fmt.Sprintf("%d Day(s), %d Hour(s)", b.Days, b.Hours)
}

// Short is the compact form used in duration rollups.
func (b Breakdown) Short() string {
	return fmt.Sprintf("%dd %dh", b.Days, b.Hours)
}
