// Package signal holds the propagation and frequency math shared by the
// analysis packages. Everything here is a pure function of its inputs.
package signal

import "math"

const (
	// DefaultTxPowerDBM is the reference received power at one meter used
	// by the log-distance model.
	DefaultTxPowerDBM = -59.0

	// DefaultPathLossExponent controls how fast signal decays with
	// distance. 2.5 sits between free space (2.0) and a cluttered indoor
	// environment (3.0).
	DefaultPathLossExponent = 2.5

	// MinDistanceM is the floor applied to every distance calculation so
	// the model never divides by zero or takes log of zero.
	MinDistanceM = 1.0
)

// DistanceFromRSSI inverts the log-distance path-loss model:
// distance = 10^((txPower - rssi) / (10 * n)). Never returns less than
// MinDistanceM.
func DistanceFromRSSI(rssi, txPowerDBM, pathLossExponent float64) float64 {
	if pathLossExponent <= 0 {
		pathLossExponent = DefaultPathLossExponent
	}
	d := math.Pow(10, (txPowerDBM-rssi)/(10*pathLossExponent))
	if d < MinDistanceM {
		return MinDistanceM
	}
	return d
}

// RSSIAtDistance predicts received power at a distance in meters.
func RSSIAtDistance(distanceM, txPowerDBM, pathLossExponent float64) float64 {
	if distanceM < MinDistanceM {
		distanceM = MinDistanceM
	}
	if pathLossExponent <= 0 {
		pathLossExponent = DefaultPathLossExponent
	}
	return txPowerDBM - 10*pathLossExponent*math.Log10(distanceM)
}

// QualityFromRSSI maps RSSI to a 0-100 quality figure. -50 dBm and above
// is 100, -100 dBm and below is 0, linear in between.
func QualityFromRSSI(rssi float64) float64 {
	q := 2 * (rssi + 100)
	return Clamp(q, 0, 100)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WiFiChannelFreqMHz returns the center frequency of a WiFi channel.
// Returns 0 for channels outside the 2.4 GHz (1-14) and 5 GHz (36-177)
// plans.
func WiFiChannelFreqMHz(channel int) float64 {
	switch {
	case channel >= 1 && channel <= 13:
		return 2412 + 5*float64(channel-1)
	case channel == 14:
		return 2484
	case channel >= 36 && channel <= 177:
		return 5000 + 5*float64(channel)
	default:
		return 0
	}
}

// Is24GHzChannel reports whether the channel belongs to the 2.4 GHz plan.
func Is24GHzChannel(channel int) bool {
	return channel >= 1 && channel <= 14
}

// ZigbeeChannelFreqMHz returns the center frequency of a Zigbee channel
// (11-26), 0 otherwise.
func ZigbeeChannelFreqMHz(channel int) float64 {
	if channel < 11 || channel > 26 {
		return 0
	}
	return 2405 + 5*float64(channel-11)
}

const (
	// wifiHalfWidthMHz is the half width of a 20 MHz 2.4 GHz WiFi channel's
	// occupied band.
	wifiHalfWidthMHz = 11.0

	// wifiSkirtMHz extends the occupied band by the spectral-mask skirt:
	// emissions do not stop dead at the band edge.
	wifiSkirtMHz = 2.0

	// zigbeeHalfWidthMHz is the half width of a Zigbee channel's carrier.
	zigbeeHalfWidthMHz = 1.0
)

// WiFiZigbeeOverlap returns the fraction (0-1) of a Zigbee channel's
// carrier that falls inside a 2.4 GHz WiFi channel's emission envelope.
// The envelope is the occupied band (center +/- 11 MHz) with a linear
// roll-off across the 2 MHz spectral-mask skirt; the Zigbee carrier is
// center +/- 1 MHz. Returns 0 when either channel is out of band.
func WiFiZigbeeOverlap(wifiChannel, zigbeeChannel int) float64 {
	wf := WiFiChannelFreqMHz(wifiChannel)
	zf := ZigbeeChannelFreqMHz(zigbeeChannel)
	if wf == 0 || zf == 0 || !Is24GHzChannel(wifiChannel) {
		return 0
	}

	dist := math.Abs(wf - zf)

	// Fully inside the occupied band.
	inner := wifiHalfWidthMHz - zigbeeHalfWidthMHz
	// Fully outside band plus skirt.
	outer := wifiHalfWidthMHz + wifiSkirtMHz + zigbeeHalfWidthMHz

	switch {
	case dist <= inner:
		return 1
	case dist >= outer:
		return 0
	default:
		return (outer - dist) / (outer - inner)
	}
}

// MilliwattsFromDBM converts dBm to linear milliwatts.
func MilliwattsFromDBM(dbm float64) float64 {
	return math.Pow(10, dbm/10)
}

// DBMFromMilliwatts converts linear milliwatts to dBm. Zero or negative
// power maps to a floor of -120 dBm.
func DBMFromMilliwatts(mw float64) float64 {
	if mw <= 0 {
		return -120
	}
	return 10 * math.Log10(mw)
}
