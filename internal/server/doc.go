// Package server hosts the Fiber application: recover middleware, request ID
// injection and the catch-all route that hands content requests to the serve
// handler. Paths under /-/ are reserved for diagnostics registered by the
// routes subpackage and bypass the content handler.
package server
