package personalization

import "strings"

type valueFunc func() string

// tokenTable maps token names to lazily evaluated values. Later writes win,
// both for the exact name and for the case-folded index.
type tokenTable struct {
	values map[string]valueFunc
	folded map[string]string
}

func newTokenTable() *tokenTable {
	return &tokenTable{
		values: make(map[string]valueFunc, 16),
		folded: make(map[string]string, 16),
	}
}

func (t *tokenTable) set(name string, fn valueFunc) {
	t.values[name] = fn
	t.folded[strings.ToLower(name)] = name
}

func (t *tokenTable) setString(name, value string) {
	t.set(name, func() string { return value })
}

func (t *tokenTable) lookup(name string) (valueFunc, bool) {
	if fn, ok := t.values[name]; ok {
		return fn, true
	}
	if key, ok := t.folded[strings.ToLower(name)]; ok {
		return t.values[key], true
	}
	return nil, false
}

func (t *tokenTable) substitute(content string) string {
	return tokenPattern.ReplaceAllStringFunc(content, func(m string) string {
		if fn, ok := t.lookup(m[2 : len(m)-2]); ok {
			return fn()
		}
		return m
	})
}
