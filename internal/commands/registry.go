package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"tasknova/internal/navigation"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Command{}}
}

// Register fails without changing the registry when the name or one of the
// aliases is taken.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, k := range keys {
		if _, taken := r.byName[k]; !taken {
			continue
		}
		if i == 0 {
			return fmt.Errorf("command already registered: %s", k)
		}
		return fmt.Errorf("command alias already registered: %s", k)
	}
	for _, k := range keys {
		r.byName[k] = c
	}
	return nil
}

// Find resolves a name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	return c, ok
}

// All lists each command once, ordered by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	var result []Command
	for key, c := range r.byName {
		if key == c.Name() {
			result = append(result, c)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result
}

// Available returns the commands usable in state: those whose screen is
// reachable plus those outside the screen flow.
func (r *Registry) Available(state navigation.State) []Command {
	reachable := navigation.Routes(state)
	var result []Command
	for _, cmd := range r.All() {
		if cmd.Route() == "" || slices.Contains(reachable, cmd.Route()) {
			result = append(result, cmd)
		}
	}
	return result
}

// ForRoute returns the command that opens route, if any.
func (r *Registry) ForRoute(route navigation.Route) (Command, bool) {
	name := routeCommand(route)
	if name == "" {
		return nil, false
	}
	return r.Find(name)
}

// routeCommand is the command name that renders a screen.
func routeCommand(route navigation.Route) string {
	switch route {
	case navigation.Welcome:
		return "welcome"
	case navigation.Register:
		return "register"
	case navigation.Login:
		return "login"
	case navigation.ForgetPassword:
		return "forgetpassword"
	case navigation.Home:
		return "home"
	}
	return ""
}

// DefaultRegistry is filled by each command's init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
