// Package conformance runs YAML fixture tables of runtime-library calls and
// optionally checks each expectation against the reference engine.
package conformance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nooga/tsrt/internal/oracle"
)

// Suite is one fixture file.
type Suite struct {
	Name  string `yaml:"suite"`
	File  string `yaml:"-"`
	Cases []Case `yaml:"cases"`
}

// Case calls one library operation. Exactly one of Want and Throws is set.
//
// Arguments are YAML scalars, lists (arrays) and maps (plain tables), with
// three special map forms: {regexp: pattern, flags: f} builds a RegExp,
// {fn: name} refers to a helper callback and {undefined: true} is
// undefined.
type Case struct {
	Name   string  `yaml:"name"`
	Call   string  `yaml:"call"`
	This   any     `yaml:"this"`
	Args   []any   `yaml:"args"`
	Want   *string `yaml:"want"`
	Throws string  `yaml:"throws"`
	JS     string  `yaml:"js"`
	Skip   string  `yaml:"skip"`
}

// Expected returns the outcome string the case expects, in the oracle's
// format.
func (c Case) Expected() string {
	if c.Throws != "" {
		return oracle.Throw + c.Throws
	}
	if c.Want == nil {
		return oracle.OK + "undefined"
	}
	return oracle.OK + *c.Want
}

func (c Case) validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("case without a name")
	case c.Call == "":
		return fmt.Errorf("case %q: no call", c.Name)
	case c.Want != nil && c.Throws != "":
		return fmt.Errorf("case %q: both want and throws", c.Name)
	}
	if _, ok := ops[c.Call]; !ok {
		return fmt.Errorf("case %q: unknown call %q", c.Name, c.Call)
	}
	return nil
}

// Parse decodes one fixture file.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	for _, c := range s.Cases {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("suite %s: %w", s.Name, err)
		}
	}
	return &s, nil
}

// LoadDir reads every *.yaml file of dir, in name order.
func LoadDir(dir string) ([]*Suite, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var suites []*Suite
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		s.File = f
		suites = append(suites, s)
	}
	if len(suites) == 0 {
		return nil, fmt.Errorf("no fixture files in %s", dir)
	}
	return suites, nil
}
