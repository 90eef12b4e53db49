// Package render presents ranked station batches.
package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/bbernstein/chargemap/internal/models"
)

// Console writes status lines and the ranked list as plain text.
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	showLinks bool
}

func NewConsole(w io.Writer, showLinks bool) *Console {
	return &Console{w: w, showLinks: showLinks}
}

func (c *Console) Status(msg string) {
	if msg == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, msg)
}

func (c *Console) Render(batch models.RankedBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nearest, ok := batch.Nearest(); ok {
		fmt.Fprintln(c.w, NearestText(*nearest))
		fmt.Fprintln(c.w)
	}
	for _, v := range Views(batch) {
		fmt.Fprintln(c.w, v.Text)
		if !c.showLinks {
			continue
		}
		if v.DirectionsURL != "" {
			fmt.Fprintf(c.w, "   directions: %s\n", v.DirectionsURL)
		}
		fmt.Fprintf(c.w, "   search: %s\n", v.SearchURL)
	}
}

// Collector keeps what it is given so callers can serialize it later.
type Collector struct {
	mu       sync.Mutex
	statuses []string
	batch    *models.RankedBatch
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Status(msg string) {
	if msg == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, msg)
}

func (c *Collector) Render(batch models.RankedBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = &batch
}

// Statuses returns the status messages in the order they arrived.
func (c *Collector) Statuses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.statuses))
	copy(out, c.statuses)
	return out
}

// LastStatus returns the most recent status message, or "".
func (c *Collector) LastStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.statuses) == 0 {
		return ""
	}
	return c.statuses[len(c.statuses)-1]
}

// Batch returns the rendered batch, if any.
func (c *Collector) Batch() (models.RankedBatch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.batch == nil {
		return models.RankedBatch{}, false
	}
	return *c.batch, true
}
