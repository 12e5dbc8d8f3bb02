package airdata

// ratio of specific heats for air, -
const Gamma = 1.4

// sea-level static pressure, Pa
const P0 = 1.01325e5

// sea-level static temperature, K
const T0 = 288.150

// sea-level speed of sound, m/s
const A0 = 340.294

// sea-level density, kg/m3
const Rho0 = 1.225

// tropopause temperature, K
const TStar = 216.650

// tropopause speed of sound, m/s
const AStar = 295.070

// top of the lapse layer, m
const H1 = 11000.0

// top of the modelled atmosphere (exclusive), m
const HMax = 20000.0

// temperature lapse rate of the lower layer, K/m
const lapseRate = 6.5e-3

// pressure exponent of the lower layer (g/(R*L)), -
const pressureExponent = 5.2558774

// density exponent of the lower layer, -
const densityExponent = pressureExponent - 1.0

// pressure and density ratios at H1, -
const (
	deltaStar = 0.223361
	sigmaStar = 0.297076
)

// scale height of the isothermal layer (R*T*/g), m
const scaleHeight = 6341.6184

// Rayleigh-Pitot coefficient for gamma = 1.4, -
//
//	((gamma+1)/2)^((gamma+1)/(gamma-1)) * (2/(gamma-1))^(1/(gamma-1))
const rayleighPitot = 166.92158

// RegimeThreshold is the impact-pressure ratio at M = 1 under gamma = 1.4.
// Ratios above it are supersonic.
const RegimeThreshold = 0.893

// accepted static temperature range, K
const (
	MinTemperature = 150.0
	MaxTemperature = 350.0
)
