package cache

import "time"

// Cleaner is anything that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps registered caches on a fixed interval so expired
// entries do not sit in memory until the next Get touches them.
type Manager struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stop:
			return
		}
	}
}

// Stop halts the sweep and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
