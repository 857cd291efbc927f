package response

import (
	"encoding/json"
	"strings"
)

// DependencyKey is the object key holding the module list in a dependency block.
const DependencyKey = "modules"

// DependencySpec is a package to install. An empty Version means latest.
type DependencySpec struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Latest reports whether the spec carries no version constraint.
func (d DependencySpec) Latest() bool {
	return d.Version == "" || d.Version == "latest"
}

// InstallArg renders the spec as a package manager argument.
func (d DependencySpec) InstallArg() string {
	if d.Latest() {
		return d.Name
	}
	return d.Name + "@" + d.Version
}

// ExtractDependencies finds the first json block holding a "modules" list:
//
//	{"modules": [{"name": "axios", "version": "^1.0.0"}]}
//
// A missing or malformed block yields an empty list and a non-nil warning
// error; callers are expected to log it and carry on.
func ExtractDependencies(raw string) ([]DependencySpec, error) {
	obj, err := findObject(raw, DependencyKey)
	if err != nil {
		return []DependencySpec{}, err
	}

	var modules []DependencySpec
	if err := json.Unmarshal(obj[DependencyKey], &modules); err != nil {
		return []DependencySpec{}, &BlockError{Block: string(obj[DependencyKey]), Err: err}
	}

	specs := make([]DependencySpec, 0, len(modules))
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		name := strings.TrimSpace(m.Name)
		// A leading dash would reach the package manager as a flag.
		if name == "" || strings.HasPrefix(name, "-") || seen[name] {
			continue
		}
		seen[name] = true
		specs = append(specs, DependencySpec{
			Name:    name,
			Version: strings.TrimSpace(m.Version),
		})
	}
	return specs, nil
}

// InstallArgs renders specs in order for a package manager command line.
func InstallArgs(specs []DependencySpec) []string {
	args := make([]string, 0, len(specs))
	for _, s := range specs {
		args = append(args, s.InstallArg())
	}
	return args
}
