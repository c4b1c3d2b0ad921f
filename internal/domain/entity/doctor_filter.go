package entity

// DoctorFilter is a domain-level filter for searching doctors.
// Attribute filters are applied by the repository; geospatial and free-text
// name filtering happen in the usecase layer on the returned set.
type DoctorFilter struct {
	Specialization string   // Exact match
	ClinicName     string   // ILIKE match
	MinFee         *float64 // Inclusive lower bound
	MaxFee         *float64 // Inclusive upper bound
	RequireCoords  bool     // Only doctors with clinic coordinates
}
