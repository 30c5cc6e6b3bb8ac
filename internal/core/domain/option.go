package domain

// OptionRow is one row of the reference table used to build cascading
// dropdown choices. The table is maintained out-of-band and read-only here.
type OptionRow struct {
	Specialty   string `json:"specialty"`
	Group       string `json:"group"`
	Name        string `json:"name"`
	Commune     string `json:"commune"`
	Institution string `json:"institution"`
	Supervisor  string `json:"supervisor"`
}

// OptionIndex is the derived dropdown structure: specialty→group→names and
// commune→institution→supervisors, values sorted and de-duplicated.
type OptionIndex struct {
	BySpecialty map[string]map[string][]string `json:"by_specialty"`
	ByCommune   map[string]map[string][]string `json:"by_commune"`
}

// SummaryStats is the aggregate bundle computed over the full record set.
type SummaryStats struct {
	SpecialtyCount   int     `json:"specialty_count"`
	RecordCount      int     `json:"record_count"`
	TotalHours       float64 `json:"total_hours"`
	InstitutionCount int     `json:"institution_count"`
}
