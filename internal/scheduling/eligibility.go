package scheduling

import "slices"

// FilterEligible returns the clinicians of the given type that are licensed in
// the patient's state and accept the patient's insurance, in roster order.
func FilterEligible(roster []Clinician, patient Patient, clinicianType ClinicianType) []Clinician {
	var eligible []Clinician
	for _, c := range roster {
		if c.ClinicianType != clinicianType {
			continue
		}
		if !slices.Contains(c.States, patient.State) || !slices.Contains(c.Insurances, patient.Insurance) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}
