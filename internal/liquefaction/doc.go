// Package liquefaction computes the SPT liquefaction index of a site point.
//
// The calculation follows the standard-penetration discrimination procedure:
//
//  1. Reference blow count N0 from the seismic intensity (7, 8 or 9).
//  2. Critical blow count Ncr = N0 * depth factor, where the factor depends on
//     the layer's saturated depth ds relative to the groundwater depth dw.
//  3. Safety factor FS = N / Ncr.
//  4. Depth weight wi, a step function of ds.
//  5. Layer contribution (1 - FS) * di * wi for layers with FS <= 1.
//  6. Liquefaction index ILE as the sum of contributions.
//  7. Grade from ILE and the discrimination depth (15 m or 20 m).
//
// Everything here is a pure function over value types. Callers own any
// collection of results; see package storage for persistence.
//
// Mitigation measures for a grade and seismic fortification category are
// static data embedded from measures.yaml.
package liquefaction
