// Package metrics provides the atomic counters used to instrument the
// neighbor set core's CAS retries, diversity rejections, and backlink
// fan-out, plus the bench harness's own node-insertion count.
package metrics

import (
	"sync"
	"sync/atomic"
)

// Collector aggregates named counters.
type Collector struct {
	counters sync.Map // map[string]*atomic.Int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Counter adds delta to the named counter, creating it at zero if absent.
func (c *Collector) Counter(name string, delta int64) {
	val, _ := c.counters.LoadOrStore(name, &atomic.Int64{})
	val.(*atomic.Int64).Add(delta)
}

// GetCounter returns the current value of the named counter, or 0 if unset.
func (c *Collector) GetCounter(name string) int64 {
	val, ok := c.counters.Load(name)
	if !ok {
		return 0
	}
	return val.(*atomic.Int64).Load()
}
