// Package driving defines the interfaces through which the outside world
// calls INTO the core (primary ports). The CLI and TUI adapters depend on
// these, never on concrete services.
package driving
