// Package filter provides the separable blurs shared by the CPU tier and
// mirrored by the blur shader.
//
// Every blur uses a fixed 13-tap sparse kernel: taps sit at k*step for
// k in [-6,6] with step = max(sigma/2, 0.25), samples between pixels are
// linearly interpolated, and edges clamp. The GPU shader evaluates the same
// taps so both tiers agree within rounding.
package filter
