// Package api serves the redacted settings dump over HTTP for local
// inspection. It never accepts writes: resolved settings are immutable.
package api
