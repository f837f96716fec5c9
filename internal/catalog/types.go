package catalog

// Department is a clinic a record can be filed under
type Department struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Defaults fill clinical fields the caller and the analyzer left empty
type Defaults struct {
	Diagnosis string `yaml:"diagnosis" json:"diagnosis"`
	Treatment string `yaml:"treatment" json:"treatment"`
}

type catalogFile struct {
	Departments     []Department `yaml:"departments"`
	SensitiveFields []string     `yaml:"sensitive_fields"`
	Defaults        Defaults     `yaml:"defaults"`
}
