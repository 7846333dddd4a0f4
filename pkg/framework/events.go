package framework

import "sync"

// EventBus delivers console lifecycle events to subscribers. Subscribers run
// synchronously on the announcing goroutine.
type EventBus struct {
	mu      sync.Mutex
	uiStart []func(revision string)
	uiStop  []func()
	command []func(line string)
}

// OnUIStart subscribes to the UI-start event.
func (b *EventBus) OnUIStart(f func(revision string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uiStart = append(b.uiStart, f)
}

// OnUIStop subscribes to the UI-stop event.
func (b *EventBus) OnUIStop(f func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uiStop = append(b.uiStop, f)
}

// OnCommand subscribes to the command-issued event.
func (b *EventBus) OnCommand(f func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.command = append(b.command, f)
}

// AnnounceUIStart announces that the console UI has started.
func (b *EventBus) AnnounceUIStart(revision string) {
	for _, f := range snapshot(&b.mu, b.uiStart) {
		f(revision)
	}
}

// AnnounceUIStop announces that the console UI is stopping.
func (b *EventBus) AnnounceUIStop() {
	for _, f := range snapshot(&b.mu, b.uiStop) {
		f()
	}
}

// AnnounceCommand announces that a command line was issued.
func (b *EventBus) AnnounceCommand(line string) {
	for _, f := range snapshot(&b.mu, b.command) {
		f(line)
	}
}

func snapshot[T any](mu *sync.Mutex, fs []T) []T {
	mu.Lock()
	defer mu.Unlock()
	return append([]T(nil), fs...)
}
