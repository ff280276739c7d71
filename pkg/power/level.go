package power

// Breakpoints are the discharge curve voltages of 0%, 10%, ... 90%.
var Breakpoints = [10]float32{
	3.00, 3.78, 3.83, 3.87, 3.89, 3.92, 3.96, 4.00, 4.04, 4.10,
}

// chargeIndex counts the breakpoints strictly below v, capped at 9.
func chargeIndex(v float32) int {
	n := 0
	for n < len(Breakpoints)-1 && v > Breakpoints[n] {
		n++
	}
	return n
}

// Level converts a voltage into a level percent, 0..90 in steps of 10.
func Level(v float32) uint8 {
	return uint8(chargeIndex(v) * 10)
}

// ChargeFraction is Level as 0.0..0.9.
func ChargeFraction(v float32) float32 {
	return float32(chargeIndex(v)) / 10
}
