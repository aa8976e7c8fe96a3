package lsoda

// eta is the machine epsilon used throughout the integrator for roundoff
// guards: the T+H=T test, the tolerance floor, and the interpolation
// window bounds. IEEE double precision: 2^-53.
const eta = 1.0 / (1 << 53)
