package sim

// PressureSample is one interval's pressure estimate, in units where the
// close-packed pressure scale is V_relative.
type PressureSample struct {
	Pressure  float64
	PressureX float64
	PressureY float64
}

// intervalStats accumulates the chains of one sampling interval.
type intervalStats struct {
	contact [2]float64 // summed contact offsets per axis
	length  [2]float64 // summed chain budgets per axis
	chains  int64
}

// pressures evaluates the virial estimator (sum of contact offsets over the traveled
// length, plus the ideal-gas term) for each axis and for both axes together.
func (s *intervalStats) pressures(vRelative float64) PressureSample {
	return PressureSample{
		Pressure:  ((s.contact[AxisX]+s.contact[AxisY])/(s.length[AxisX]+s.length[AxisY]) + 1) / vRelative,
		PressureX: (s.contact[AxisX]/s.length[AxisX] + 1) / vRelative,
		PressureY: (s.contact[AxisY]/s.length[AxisY] + 1) / vRelative,
	}
}

func (s *intervalStats) reset() {
	*s = intervalStats{}
}
