package tenant

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Tenants []seedTenant `yaml:"tenants"`
}

type seedTenant struct {
	Name     string         `yaml:"name"`
	Slug     string         `yaml:"slug"`
	Domain   string         `yaml:"domain"`
	Status   string         `yaml:"status"`
	Settings map[string]any `yaml:"settings"`
}

// LoadSeed decodes a YAML seed document:
//
//	tenants:
//	  - name: Acme Inc
//	    slug: acme
//	    settings:
//	      theme: dark
//	      max_users: 25
func LoadSeed(r io.Reader) ([]CreateParams, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("tenant: decode seed: %w", err)
	}

	out := make([]CreateParams, 0, len(f.Tenants))
	for i, st := range f.Tenants {
		p := CreateParams{
			Name:     st.Name,
			Slug:     st.Slug,
			Domain:   st.Domain,
			Settings: SettingsFromMap(st.Settings),
		}
		if st.Status != "" {
			status, err := ParseStatus(st.Status)
			if err != nil {
				return nil, fmt.Errorf("tenant: seed entry %d: %w", i, err)
			}
			p.Status = status
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadSeedFile reads a seed document from path.
func LoadSeedFile(path string) ([]CreateParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tenant: open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}
