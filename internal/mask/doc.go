// Package mask holds the mask definition registry and the compositor that
// combines binary masks built from it.
//
// A mask definition is identified by its Kind and a name, and owns an
// ordered list of parameter sets plus the builder that turns a parameter set
// into a Layer. A Handle names one (kind, name, index) triple. Registries are
// plain values: create one with NewRegistry, tear it down with Reset.
package mask
