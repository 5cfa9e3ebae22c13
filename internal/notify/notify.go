package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Notifier is the fire-and-forget side channel mutations use for
// user-visible toasts. It is decoupled from return values: a mutation
// both rejects with its error and raises a notification.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// Log writes notifications to the injected logger. Used by the CLI.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

func (l *Log) Success(message string) { l.log.Info(message, zap.String("level", "success")) }
func (l *Log) Error(message string)   { l.log.Warn(message, zap.String("level", "error")) }
func (l *Log) Info(message string)    { l.log.Info(message, zap.String("level", "info")) }

// Hub fans notifications out to subscribed UI surfaces without blocking
// the publisher: a slow subscriber drops messages instead of stalling a
// mutation.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Notification]struct{})}
}

func (h *Hub) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) publish(level Level, message string) {
	n := Notification{Level: level, Message: message, Time: time.Now()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *Hub) Success(message string) { h.publish(LevelSuccess, message) }
func (h *Hub) Error(message string)   { h.publish(LevelError, message) }
func (h *Hub) Info(message string)    { h.publish(LevelInfo, message) }

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) record(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, Notification{Level: level, Message: message, Time: time.Now()})
}

func (r *Recorder) Success(message string) { r.record(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.record(LevelError, message) }
func (r *Recorder) Info(message string)    { r.record(LevelInfo, message) }

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

func (r *Recorder) CountLevel(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.seen {
		if item.Level == level {
			n++
		}
	}
	return n
}
