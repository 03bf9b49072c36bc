// Package logging builds the zap logger shared by the command-line tools,
// the diagnostic server and the Lambda entry point.
package logging
