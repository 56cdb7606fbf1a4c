// Package configstore loads and persists the filter-complete configuration
// file from an XDG-compliant location and layers environment overrides on
// top of it.
package configstore
