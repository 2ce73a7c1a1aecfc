// Package gear contains the pure geometry math for the ABENICS gear pair:
// parameter validation and derivation, spherical/planar involute flank
// curves, tooth profile assembly, and the driven ring cross-section.
// Nothing in this package calls the geometry kernel.
package gear
