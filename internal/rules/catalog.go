package rules

// Issue types.
const (
	TypeCodeSmell     = "CODE_SMELL"
	TypeBug           = "BUG"
	TypeVulnerability = "VULNERABILITY"
)

// Severities, lowest first.
const (
	SeverityInfo     = "INFO"
	SeverityMinor    = "MINOR"
	SeverityMajor    = "MAJOR"
	SeverityCritical = "CRITICAL"
	SeverityBlocker  = "BLOCKER"
)

// Definition is the metadata registered for a rule key.
type Definition struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Remediation string `json:"remediation"`
}

// Catalog lists every rule in key order.
var Catalog = []Definition{
	{"S001", "MissingModuledoc", "Modules should have @moduledoc", TypeCodeSmell, SeverityMinor, "5min"},
	{"S002", "LargeModule", "Modules should not have too many lines", TypeCodeSmell, SeverityMajor, "5min"},
	{"S003", "PipeChainStart", "Pipe chains should start with a raw value", TypeCodeSmell, SeverityMinor, "5min"},
	{"S004", "IoInspect", "IO.inspect calls should be removed", TypeCodeSmell, SeverityMajor, "5min"},
	{"S201", "HardcodedSecret", "Credentials should not be hardcoded", TypeVulnerability, SeverityBlocker, "5min"},
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Definition, bool) {
	for _, d := range Catalog {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}
