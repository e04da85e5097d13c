// Package inversion estimates Bouligand spectrum parameters from a radial
// log power spectrum.
//
// [Fitter] finds the maximum a posteriori point with L-BFGS, [Sampler]
// draws from the posterior with a Metropolis-Hastings random walk, and
// [Sensitivity] refits spectra perturbed by their bin uncertainty. All
// three weight each bin by the inverse of its log-power variance and add
// the log priors held by a [prior.Registry]. Randomness always comes from
// a caller-supplied generator.
//
// [Tanaka] implements the centroid method as a quick, model-free
// alternative.
package inversion
