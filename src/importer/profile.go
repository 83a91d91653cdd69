package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile describes the column layout of one bank's statement export.
// Column indexes are zero based.
type Profile struct {
	Name      string `yaml:"name"`
	Delimiter string `yaml:"delimiter"`
	SkipRows  int    `yaml:"skip_rows"`

	DateColumn int    `yaml:"date_column"`
	DateLayout string `yaml:"date_layout"`

	// Either AmountColumn, or WithdrawColumn and DepositColumn.
	AmountColumn   *int `yaml:"amount_column"`
	WithdrawColumn *int `yaml:"withdraw_column"`
	DepositColumn  *int `yaml:"deposit_column"`
	// Negate flips amounts for exports that list outflows as positive.
	Negate bool `yaml:"negate"`

	BalanceColumn *int `yaml:"balance_column"`
	// NoteColumns maps note keys to columns; the note is stored as JSON.
	NoteColumns map[string]int `yaml:"note_columns"`
}

const defaultDateLayout = "2006-01-02"

func (p Profile) delimiter() rune {
	if p.Delimiter == "" {
		return '\t'
	}
	r := []rune(p.Delimiter)
	return r[0]
}

func (p Profile) layout() string {
	if p.DateLayout == "" {
		return defaultDateLayout
	}
	return p.DateLayout
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if len([]rune(p.Delimiter)) > 1 {
		return fmt.Errorf("profile %s: delimiter must be a single character", p.Name)
	}
	hasAmount := p.AmountColumn != nil
	hasSplit := p.WithdrawColumn != nil && p.DepositColumn != nil
	if hasAmount == hasSplit {
		return fmt.Errorf("profile %s: set amount_column or both withdraw_column and deposit_column", p.Name)
	}
	if p.DateColumn < 0 || p.SkipRows < 0 {
		return fmt.Errorf("profile %s: negative column or skip_rows", p.Name)
	}
	return nil
}

// Profiles is a set of profiles keyed by name.
type Profiles map[string]Profile

func (ps Profiles) Get(name string) (Profile, error) {
	p, ok := ps[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown import profile %q", name)
	}
	return p, nil
}

func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for n := range ps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func ParseProfiles(r io.Reader) (Profiles, error) {
	var f profileFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	out := make(Profiles, len(f.Profiles))
	for _, p := range f.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		out[p.Name] = p
	}
	return out, nil
}

// LoadProfiles reads a profile file. A missing file yields no profiles.
func LoadProfiles(path string) (Profiles, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profiles{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseProfiles(f)
}
