// Package tray provides the system tray interface for PoseFit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onExercise  func(name string)
	onDashboard func()
	onQuit      func()
	exercises   []string
	active      string
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuProgress  *systray.MenuItem
	menuExercises []*systray.MenuItem
}

// New creates a Tray offering the given exercises, with the active one
// checked. Tracking starts enabled.
func New(exercises []string, active string) *Tray {
	return &Tray{
		exercises: exercises,
		active:    active,
		enabled:   true,
	}
}

// OnToggle sets the callback for the enable/disable menu item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnExercise sets the callback invoked when an exercise is selected.
func (t *Tray) OnExercise(fn func(name string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExercise = fn
}

// OnDashboard sets the callback for the dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PoseFit")
	systray.SetTooltip("PoseFit Exercise Tracking")

	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle exercise tracking")
	systray.AddSeparator()

	t.menuProgress = systray.AddMenuItem("Reps: 0", "Reps this session")
	t.menuProgress.Disable()
	systray.AddSeparator()

	menuExercise := systray.AddMenuItem("Exercise", "Choose the tracked exercise")
	for _, name := range t.exercises {
		item := menuExercise.AddSubMenuItemCheckbox(name, "Track "+name, name == t.active)
		t.menuExercises = append(t.menuExercises, item)
		go t.watchExercise(item, name)
	}
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PoseFit")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// watchExercise forwards clicks on one exercise submenu item.
func (t *Tray) watchExercise(item *systray.MenuItem, name string) {
	for range item.ClickedCh {
		t.mu.Lock()
		t.active = name
		for i, other := range t.menuExercises {
			if t.exercises[i] == name {
				other.Check()
			} else {
				other.Uncheck()
			}
		}
		callback := t.onExercise
		t.mu.Unlock()

		if callback != nil {
			callback(name)
		}
	}
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetProgress updates the rep readout in the menu. For hold exercises the
// caller passes the hold time instead.
func (t *Tray) SetProgress(reps int, holdSeconds float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuProgress == nil {
		return
	}
	if holdSeconds > 0 {
		t.menuProgress.SetTitle(fmt.Sprintf("Hold: %.0fs", holdSeconds))
	} else {
		t.menuProgress.SetTitle(fmt.Sprintf("Reps: %d", reps))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
