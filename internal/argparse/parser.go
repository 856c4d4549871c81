package argparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shayne/yargs"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// ConfigKey is the option holding the config file path. An empty value asks
// the loader to discover a file by application name.
const ConfigKey = "config"

// Terminator ends option processing; every later token is positional.
const Terminator = "--"

// Result is the outcome of Parse.
type Result struct {
	Options     conftree.Tree
	Args        []string
	Directive   Directive
	ConfigGiven bool
	// Err is set when Directive is Usage.
	Err error
}

// UsageError reports a malformed flag.
type UsageError struct {
	Flag   string
	Reason string
}

func (e *UsageError) Error() string {
	dash := "-"
	if len(e.Flag) > 1 {
		dash = "--"
	}
	return fmt.Sprintf("flag %s%s: %s", dash, e.Flag, e.Reason)
}

// Parse splits tokens using the given flag set. Pass DefaultFlags() plus any
// application flags. Parse never fails: malformed flags are reported through
// Result.Directive and Result.Err.
func Parse(tokens []string, flags []Flag) *Result {
	res := &Result{Options: conftree.New()}

	head, tail := splitTerminator(tokens)

	specs := make(map[string]yargs.ConsumeSpec)
	byName := make(map[string]Flag)
	for _, f := range flags {
		for _, name := range f.Names() {
			specs[name] = yargs.ConsumeSpec{Kind: f.kind()}
			byName[name] = f
		}
	}

	remaining, values := yargs.ConsumeFlagsBySpec(head, specs)

	// Values are grouped by spelling; replay them in command-line order so
	// the last one given wins.
	next := make(map[string]int)
	consume := func(name string) error {
		i := next[name]
		if i >= len(values[name]) {
			return nil
		}
		next[name] = i + 1
		return res.apply(byName[name], name, values[name][i])
	}

	order := occurrences(head, byName)
	for _, f := range flags {
		// Spellings the scan missed, such as grouped short flags.
		for _, name := range f.Names() {
			for extra := len(values[name]) - countOf(order, name); extra > 0; extra-- {
				order = append(order, name)
			}
		}
	}
	for _, name := range order {
		if err := consume(name); err != nil {
			res.Directive = Usage
			res.Err = err
			return res
		}
	}

	for _, tok := range remaining {
		if key, value, ok := splitAssignment(tok); ok {
			res.Options.SetDotted(key, value)
			continue
		}
		res.Args = append(res.Args, tok)
	}
	res.Args = append(res.Args, tail...)

	if _, ok := res.Options[ConfigKey]; ok {
		res.ConfigGiven = true
	} else {
		res.Options[ConfigKey] = ""
	}
	return res
}

func (r *Result) apply(f Flag, name, raw string) error {
	if f.TakesValue {
		if raw == "" {
			return &UsageError{Flag: name, Reason: "requires a value"}
		}
		r.Options.SetDotted(f.Key, raw)
		return nil
	}

	on, err := strconv.ParseBool(raw)
	if err != nil {
		return &UsageError{Flag: name, Reason: fmt.Sprintf("invalid boolean %q", raw)}
	}
	if !on {
		return nil
	}
	if f.Directive != Continue {
		// Help outranks Version wherever it appears.
		if r.Directive == Continue || f.Directive < r.Directive {
			r.Directive = f.Directive
		}
		return nil
	}
	if f.Key != "" {
		r.Options.SetDotted(f.Key, f.Value)
	}
	return nil
}

// occurrences lists the recognized flag spellings in tokens, in order.
func occurrences(tokens []string, byName map[string]Flag) []string {
	var names []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if len(tok) < 2 || tok[0] != '-' {
			continue
		}
		name, _, inline := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		f, ok := byName[name]
		if !ok {
			continue
		}
		names = append(names, name)
		if f.TakesValue && !inline {
			i++
		}
	}
	return names
}

func countOf(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}

// splitTerminator returns the tokens before "--" and the tokens after it.
func splitTerminator(tokens []string) (head, tail []string) {
	for i, tok := range tokens {
		if tok == Terminator {
			return tokens[:i], tokens[i+1:]
		}
	}
	return tokens, nil
}

// splitAssignment matches key=value where key is non-empty, contains no
// "=" and does not look like a flag.
func splitAssignment(tok string) (key, value string, ok bool) {
	if strings.HasPrefix(tok, "-") {
		return "", "", false
	}
	idx := strings.IndexByte(tok, '=')
	if idx <= 0 {
		return "", "", false
	}
	return tok[:idx], tok[idx+1:], true
}
