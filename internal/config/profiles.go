package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

// profileFile is the top-level shape of the profiles TOML. Each
// profile stays a raw primitive so that only the keys it actually
// sets override the form.
type profileFile struct {
	Profiles map[string]toml.Primitive `toml:"profiles"`
}

// ApplyProfile overlays the named profile from the TOML file at path
// onto the form. Keys the profile does not set keep their current
// values.
func ApplyProfile(path, name string, form *document.Form) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var pf profileFile
	md, err := toml.Decode(string(data), &pf)
	if err != nil {
		return fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	prim, ok := pf.Profiles[name]
	if !ok {
		names := profileNames(pf)
		if len(names) == 0 {
			return fmt.Errorf("profile %q not found in %s (file defines no profiles)", name, path)
		}
		return fmt.Errorf("profile %q not found in %s (available: %s)", name, path, strings.Join(names, ", "))
	}
	if err := md.PrimitiveDecode(prim, form); err != nil {
		return fmt.Errorf("failed to apply profile %q: %w", name, err)
	}
	return nil
}

// ListProfiles returns the names defined in the profile file, sorted.
func ListProfiles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	var pf profileFile
	if _, err := toml.Decode(string(data), &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}
	return profileNames(pf), nil
}

func profileNames(pf profileFile) []string {
	names := make([]string, 0, len(pf.Profiles))
	for n := range pf.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
