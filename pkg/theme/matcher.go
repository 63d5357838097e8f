package theme

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/pagemason/pagemason/pkg/markup"
)

// matchEnv is the environment a descriptor's match expression runs
// against. The expr tags name the variables the expression sees, e.g.
//
//	tag == "section" && hasClass("banner")
//	attrs["data-role"] == "footer"
type matchEnv struct {
	Tag      string            `expr:"tag"`
	Text     string            `expr:"text"`
	Attrs    map[string]string `expr:"attrs"`
	HasClass func(string) bool `expr:"hasClass"`
}

func newMatchEnv(n *markup.Node) matchEnv {
	attrs := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		attrs[a.Key] = a.Value
	}
	return matchEnv{
		Tag:      n.Tag,
		Text:     n.InnerText(),
		Attrs:    attrs,
		HasClass: n.HasClass,
	}
}

// compileMatcher compiles a descriptor's match expression into a node
// predicate. Expressions are compiled once at catalog build time; a
// runtime evaluation error counts as no match.
func compileMatcher(code string) (func(*markup.Node) bool, error) {
	program, err := expr.Compile(
		code,
		expr.Env(matchEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile match expression %q", code)
	}

	return func(n *markup.Node) bool {
		result, err := runMatcher(program, n)
		return err == nil && result
	}, nil
}

func runMatcher(program *vm.Program, n *markup.Node) (bool, error) {
	result, err := expr.Run(program, newMatchEnv(n))
	if err != nil {
		return false, errors.Wrap(err, "failed to run match expression")
	}
	matched, ok := result.(bool)
	return matched && ok, nil
}
