// Package primitives defines the declarative form of a state hierarchy:
// a MachineConfig holding trees of StateConfig, each with event-keyed
// TransitionConfig lists. Configs carry yaml and json tags so definitions
// can be stored as files and compiled into an hsmx.Hierarchy.
//
// State IDs are global names: a transition target names any state of the
// machine, and FindState accepts dotted paths ("Root.State1.State11").
// Entry, exit, action and guard references are names resolved at compile
// time; a guard that is not a registered name is treated as an expression
// over the machine's store.
package primitives
