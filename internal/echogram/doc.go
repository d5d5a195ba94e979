// Package echogram holds the value types shared by the mask registry and the
// sound-scattering-layer pipeline.
//
// Key types: Grid (backscatter values plus an explicit validity mask), Mask
// (binary or flag cells), ObsParams (per-ping observation parameters) and
// Channel/Provider (per-frequency access to Sv grids).
//
// Layout: rows are depth samples (row 0 is the shallowest), columns are pings
// ordered left to right in time. No package in this module mutates a Grid or
// Mask it did not allocate.
package echogram
