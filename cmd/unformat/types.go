package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/cespare/unformat"
)

// typesFile is the YAML layout of --types:
//
//	types:
//	  shouty:
//	    pattern: '[a-z]+'
//	    transform: upper
//	  pair:
//	    pattern: '(\d+)-(\d+)'
//	    groups: 2
type typesFile struct {
	Types map[string]typeDef `yaml:"types"`
}

type typeDef struct {
	Pattern   string `yaml:"pattern"`
	Groups    int    `yaml:"groups"`
	Transform string `yaml:"transform"`
}

var transforms = map[string]unformat.ConvertFunc{
	"":       func(s string) (any, error) { return s, nil },
	"string": func(s string) (any, error) { return s, nil },
	"upper":  func(s string) (any, error) { return strings.ToUpper(s), nil },
	"lower":  func(s string) (any, error) { return strings.ToLower(s), nil },
	"trim":   func(s string) (any, error) { return strings.TrimSpace(s), nil },
	"int": func(s string) (any, error) {
		return strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	},
	"float": func(s string) (any, error) {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	},
	"bool": func(s string) (any, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	},
}

func loadTypes(path string) (map[string]unformat.Converter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTypes(data)
}

func parseTypes(data []byte) (map[string]unformat.Converter, error) {
	var f typesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing types: %w", err)
	}
	types := make(map[string]unformat.Converter, len(f.Types))
	for tag, def := range f.Types {
		c, err := def.converter()
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", tag, err)
		}
		types[tag] = c
	}
	return types, nil
}

func (d typeDef) converter() (unformat.Converter, error) {
	fn, ok := transforms[d.Transform]
	if !ok {
		return unformat.Converter{}, fmt.Errorf("unknown transform %q", d.Transform)
	}
	if d.Pattern == "" {
		if d.Groups != 0 {
			return unformat.Converter{}, errors.New("groups given without a pattern")
		}
		return unformat.Convert(fn), nil
	}
	re, err := regexp2.Compile(d.Pattern, regexp2.None)
	if err != nil {
		return unformat.Converter{}, fmt.Errorf("bad pattern: %w", err)
	}
	// Group 0 is the whole match.
	if n := len(re.GetGroupNumbers()) - 1; n != d.Groups {
		return unformat.Converter{}, fmt.Errorf("pattern has %d groups, %d declared", n, d.Groups)
	}
	for _, name := range re.GetGroupNames() {
		if _, err := strconv.Atoi(name); err != nil {
			return unformat.Converter{}, fmt.Errorf("pattern must not name groups, found %q", name)
		}
	}
	return unformat.WithPattern(d.Pattern, fn).WithGroupCount(d.Groups), nil
}
