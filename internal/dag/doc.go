// Package dag builds and validates the execution graph for a launch plan.
// Nodes are launches and resources; edges come from explicit depends_on
// entries and from implicit references inside argument expressions.
package dag
