// Package registry provides a global registry for application factories.
// Apps register themselves in init() functions, allowing the hosts to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/driver"
)

// ErrUnknownApp is returned by Create for an unregistered ID.
var ErrUnknownApp = errors.New("registry: unknown app")

// App is an application the hosts can run.
// Apps contain pure logic with no Bubble Tea dependency; the host handles
// events, timing and terminal output.
type App interface {
	driver.App

	// ID returns a unique identifier for this app (e.g., "bounce").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Init prepares the app for the given surface. The host calls it once,
	// when the surface becomes available.
	Init(cfg core.RuntimeConfig) error

	// Frame returns the screen the last Render drew into.
	Frame() *core.Screen
}

// AppInfo contains metadata about a registered app.
type AppInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of an app.
type Factory func() App

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an app factory to the registry.
// Panics if an app with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: app %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered apps, sorted by ID.
func List() []AppInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]AppInfo, 0, len(factories))
	for id := range factories {
		result = append(result, AppInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new app by its ID.
func Create(id string) (App, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownApp, id)
	}

	return f(), nil
}

// Exists checks if an app with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
