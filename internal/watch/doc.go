// Package watch implements the figwatch daemon: it monitors the configured
// figure directories for changes, debounces rapid save bursts per file, and
// hands stabilized paths to the conversion trigger. A write to the roots
// file tears the whole watch set down and rebuilds it from the store.
package watch
