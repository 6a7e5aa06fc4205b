// Package services implements the driving port interfaces.
// Services contain the indexing and retrieval logic and orchestrate
// calls to driven ports (adapters).
package services
