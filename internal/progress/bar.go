package progress

import (
	"fmt"
	"sync"
	"time"
)

// Bar is a simple terminal progress bar. Station pages list a few dozen
// tracks at most, so every increment renders.
type Bar struct {
	total     int
	current   int
	mu        sync.Mutex
	startTime time.Time
	done      bool
}

// New creates a new progress bar
func New(total int) *Bar {
	return &Bar{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increases the progress counter
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.render()
}

// Finish marks the progress as complete
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.current = b.total
		b.render()
		fmt.Println() // New line after completion
		b.done = true
	}
}

// render displays the progress bar
func (b *Bar) render() {
	if b.done || b.total == 0 {
		return
	}

	percentage := float64(b.current) / float64(b.total) * 100
	elapsed := time.Since(b.startTime)

	barWidth := 30
	filled := int(float64(barWidth) * float64(b.current) / float64(b.total))

	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}

	fmt.Printf("\r[%s] %d/%d tracks (%.0f%%) - %s   ",
		bar,
		b.current,
		b.total,
		percentage,
		formatDuration(elapsed),
	)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
