// Package serve turns a resolved locale.Request into an HTTP response. The
// Builder consults the positive and negative caches, falls back to the
// archive reader, and describes the response as an Emission; the Handler
// drives locale resolution, redirects and the single retry without the
// intl/<lang>/ prefix, then writes the Emission to the Fiber context.
package serve
