// Package application provides application initialization and dependency wiring.
// It builds the diagnostic HTTP server around already resolved settings,
// keeping the main package focused on CLI parsing and orchestration.
package application
