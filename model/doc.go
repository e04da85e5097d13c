// Package model evaluates analytical radial power-spectrum laws for a
// magnetised crustal layer.
//
// The central function is [Bouligand], the closed form derived by
// Bouligand et al. (2009) for a layer of fractal magnetisation with top depth
// z_t and thickness Δz. It returns natural-log power at each radial
// wavenumber. [Maus] is the infinite-thickness limit of the same law.
//
// All functions are pure and safe for concurrent use. Wavenumbers are in
// radians per depth unit, so z_t and Δz come back in the same unit as the
// grid spacing that produced the wavenumbers.
package model
