// Package host adapts an external browser event source to the tracker. The
// embedding host (e.g. an extension bridge) pushes tab, window, idle and
// control events over HTTP; the adapter keeps a registry of known tabs so it
// can answer the tracker's tab lookups, and forwards each event to the
// registered sink.
package host

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"relloyd/focustrack/models"
)

// Event types accepted on the ingress.
const (
	EventTabActivated       = "tabActivated"
	EventTabUpdated         = "tabUpdated"
	EventWindowFocusChanged = "windowFocusChanged"
	EventIdleStateChanged   = "idleStateChanged"
	EventPing               = "ping"
	EventTogglePause        = "togglePause"
)

// Event is the inbound host message. Fields are used per type: tab events
// carry TabID/WindowID/URL/Incognito/Active, window events carry WindowID,
// idle events carry IdleState.
type Event struct {
	Type      string `json:"type"`
	TabID     int    `json:"tabId"`
	WindowID  int    `json:"windowId"`
	URL       string `json:"url"`
	Incognito bool   `json:"incognito"`
	Active    bool   `json:"active"`
	IdleState string `json:"idleState"`
}

// EventSink receives host events. Implemented by tracker.Tracker.
type EventSink interface {
	TabActivated(tabID int)
	TabUpdated(tabID int, active bool)
	WindowFocusChanged(windowID int)
	IdleStateChanged(state string)
	Ping()
	TogglePause() bool
}

type Adapter struct {
	logger         *zap.SugaredLogger
	mu             sync.RWMutex
	tabs           map[int]models.TabInfo
	activeByWindow map[int]int // windowID -> active tabID
	sink           EventSink
}

func NewAdapter(logger *zap.SugaredLogger) *Adapter {
	return &Adapter{
		logger:         logger,
		tabs:           make(map[int]models.TabInfo),
		activeByWindow: make(map[int]int),
	}
}

// RegisterEventSink wires the consumer of host events. Must be called before
// events arrive.
func (a *Adapter) RegisterEventSink(sink EventSink) {
	a.sink = sink
}

// Tab implements models.TabResolver.
func (a *Adapter) Tab(tabID int) (models.TabInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.tabs[tabID]
	if !ok {
		return models.TabInfo{}, models.ErrTabNotFound
	}
	return info, nil
}

// ActiveTab implements models.TabResolver.
func (a *Adapter) ActiveTab(windowID int) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tabID, ok := a.activeByWindow[windowID]
	if !ok {
		return 0, fmt.Errorf("no active tab known for window %d", windowID)
	}
	return tabID, nil
}

// Handle updates the tab registry from the event and forwards it to the
// sink. Events are dispatched synchronously; the caller provides the
// single-threaded ordering the tracker relies on.
func (a *Adapter) Handle(ev Event) error {
	if a.sink == nil {
		return fmt.Errorf("no event sink registered")
	}

	switch ev.Type {
	case EventTabActivated:
		a.rememberTab(ev)
		a.sink.TabActivated(ev.TabID)
	case EventTabUpdated:
		a.rememberTab(ev)
		a.sink.TabUpdated(ev.TabID, ev.Active)
	case EventWindowFocusChanged:
		a.sink.WindowFocusChanged(ev.WindowID)
	case EventIdleStateChanged:
		a.sink.IdleStateChanged(ev.IdleState)
	case EventPing:
		a.sink.Ping()
	case EventTogglePause:
		a.sink.TogglePause()
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// rememberTab records the tab snapshot carried by a tab event so later
// lookups (including window-focus re-resolution) can find it.
func (a *Adapter) rememberTab(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tabs[ev.TabID] = models.TabInfo{URL: ev.URL, Incognito: ev.Incognito}
	if ev.Active || ev.Type == EventTabActivated {
		a.activeByWindow[ev.WindowID] = ev.TabID
	}
}

// ServeHTTP accepts one JSON event per POST. Mounted at /events by the web
// server.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		a.logger.Errorf("Invalid host event payload: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := a.Handle(ev); err != nil {
		a.logger.Errorf("Failed to handle host event: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}
