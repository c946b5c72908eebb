package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/utils"
)

// DashboardMonitor polls the staff counters and publishes them whenever
// they change, including the day rollover nobody writes for.
type DashboardMonitor struct {
	Queries  *QueryService
	Notifier Notifier
	Interval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	last     *DashboardStats
}

func NewDashboardMonitor(queries *QueryService, notifier Notifier) *DashboardMonitor {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &DashboardMonitor{
		Queries:  queries,
		Notifier: notifier,
		Interval: 30 * time.Second,
		stopChan: make(chan struct{}),
	}
}

func (m *DashboardMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.check(context.Background())
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *DashboardMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// check publishes the current stats if they differ from the last
// published ones. It reports whether it published.
func (m *DashboardMonitor) check(ctx context.Context) bool {
	stats, err := m.Queries.Dashboard(ctx, Actor{IsStaff: true})
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching dashboard stats: %v", err)
		return false
	}
	if m.last != nil && *m.last == *stats {
		return false
	}
	m.last = stats
	m.Notifier.Publish(hub.EventDashboardUpdate, stats)
	return true
}
