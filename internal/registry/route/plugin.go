// Package route collects gin route plugins. Handler packages register a
// loader from init(); the serve command mounts them in order on the main or
// management engine.
package route

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Loader mounts routes on a gin engine.
type Loader func(r *gin.Engine) error

// Type distinguishes which server a plugin's routes belong to.
type Type int

const (
	// TypeMain registers routes on the main API server.
	TypeMain Type = iota
	// TypeManagement registers routes on the management surface (health,
	// ready, metrics). Without a dedicated management port these mount on
	// the main server.
	TypeManagement
)

// Plugin is a route plugin with an order for a deterministic mount sequence.
type Plugin struct {
	Order  int
	Type   Type
	Loader Loader
}

var plugins []Plugin

// Register adds a route plugin. Called from init() in handler packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Loaders returns the loaders of the given type, sorted by order.
func Loaders(t Type) []Loader {
	sorted := make([]Plugin, len(plugins))
	copy(sorted, plugins)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	var out []Loader
	for _, p := range sorted {
		if p.Type == t {
			out = append(out, p.Loader)
		}
	}
	return out
}
