package sift

import (
	"sift/compile"
	nt "sift/entity"
	"sift/util"
)

// View binds a field schema, a backend column mapping, and an optional
// default filter into one yaml-loadable config; the moral equivalent of a
// saved search.
type View struct {
	Schema  nt.Schema         `yaml:"schema"`
	Columns map[string]string `yaml:"columns"`
	Filter  *nt.GroupInput    `yaml:"filter,omitempty"`
}

// LoadView reads a view config from a yaml file.
func LoadView(path string) (vw *View, err error) {

	vw = &View{}
	err = util.LoadConfig(vw, path)
	return
}

// Save writes the view config back to a yaml file.
func (vw *View) Save(path string) (err error) {
	return util.WriteConfig(vw, path, 0644)
}

// Config seeds a store from the view's default filter.
func (vw *View) Config() *Config {
	return &Config{Default: vw.Filter}
}

// Compiler builds a predicate compiler for the view over a backend.
func (vw *View) Compiler(be compile.Backend) *compile.Compiler {
	return &compile.Compiler{
		Schema:  vw.Schema,
		Columns: vw.Columns,
		Backend: be,
	}
}
