// Package process cleans up browser processes left behind after the
// launcher has been asked to stop.
package process
