// Package personalization substitutes {{token}} placeholders in message
// bodies with contact data, computed date/time values and caller overrides.
package personalization

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
)

const fallbackName = "there"

var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

var (
	// DefaultTokens are computed from the clock at substitution time.
	DefaultTokens = []string{"current_date", "current_time", "current_year", "current_month", "current_day"}
	// ContactTokens are derived from the contact record.
	ContactTokens = []string{"name", "first_name", "last_name", "phone", "email", "company"}
)

// ExtractTokens returns the distinct token names in content, in the order
// they first appear. Matching is case-sensitive.
func ExtractTokens(content string) []string {
	matches := tokenPattern.FindAllStringSubmatch(content, -1)
	tokens := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tokens = append(tokens, m[1])
	}
	return tokens
}

type Option func(*Resolver)

// WithClock replaces the clock used for computed tokens.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver is stateless apart from its clock and safe for concurrent use.
type Resolver struct {
	now func() time.Time
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve replaces every {{token}} in content in a single pass. Precedence,
// lowest to highest: computed, contact-derived, contact custom fields,
// overrides. A token is looked up by exact name first and then ignoring case.
// Unknown tokens are left as they are.
func (r *Resolver) Resolve(content string, contact *model.Contact, overrides map[string]any) string {
	t := newTokenTable()
	r.addComputed(t)
	addContactDerived(t, contact)
	addCustomFields(t, contact)
	for _, k := range sortedKeys(overrides) {
		t.setString(k, stringify(overrides[k]))
	}
	return t.substitute(content)
}

// Validate reports, per contact, which non-computed tokens of content have no
// value or an empty value. Contact fields are checked without the display
// fallbacks Resolve applies, so an empty name counts as missing.
func (r *Resolver) Validate(content string, contacts []*model.Contact) []model.TokenValidation {
	tokens := ExtractTokens(content)
	out := make([]model.TokenValidation, 0, len(contacts))
	for _, c := range contacts {
		t := newTokenTable()
		r.addComputed(t)
		addContactRaw(t, c)
		addCustomFields(t, c)

		missing := make([]string, 0)
		for _, tok := range tokens {
			fn, ok := t.lookup(tok)
			if !ok || fn() == "" {
				missing = append(missing, tok)
			}
		}
		out = append(out, model.TokenValidation{
			Contact:       c,
			MissingTokens: missing,
			IsValid:       len(missing) == 0,
		})
	}
	return out
}

// Suggest lists the token names a message author can use with contacts.
func (r *Resolver) Suggest(contacts []*model.Contact) model.SuggestedTokens {
	custom := make(map[string]struct{})
	for _, c := range contacts {
		if c == nil {
			continue
		}
		for k := range c.CustomFields {
			custom[k] = struct{}{}
		}
	}

	return model.SuggestedTokens{
		Default: append([]string(nil), DefaultTokens...),
		Contact: append([]string(nil), ContactTokens...),
		Custom:  sortedKeys(custom),
	}
}

// Fill is plain template processing: exact-name replacement only, and a
// missing or empty variable keeps its placeholder.
func Fill(content string, variables map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(content, func(m string) string {
		v, ok := variables[m[2:len(m)-2]]
		if !ok {
			return m
		}
		if s := stringify(v); s != "" {
			return s
		}
		return m
	})
}

func (r *Resolver) addComputed(t *tokenTable) {
	t.set("current_date", func() string { return r.now().Format("1/2/2006") })
	t.set("current_time", func() string { return r.now().Format("3:04:05 PM") })
	t.set("current_year", func() string { return r.now().Format("2006") })
	t.set("current_month", func() string { return r.now().Month().String() })
	t.set("current_day", func() string { return r.now().Weekday().String() })
}

func addContactDerived(t *tokenTable, c *model.Contact) {
	if c == nil {
		c = &model.Contact{}
	}
	first, last := splitName(c.Name)
	name := c.Name
	if name == "" {
		name = fallbackName
	}
	if first == "" {
		first = fallbackName
	}
	t.setString("name", name)
	t.setString("first_name", first)
	t.setString("last_name", last)
	t.setString("phone", c.Phone)
	t.setString("email", c.Email)
	t.setString("company", c.Company)
}

func addContactRaw(t *tokenTable, c *model.Contact) {
	if c == nil {
		return
	}
	first, last := splitName(c.Name)
	t.setString("name", c.Name)
	t.setString("first_name", first)
	t.setString("last_name", last)
	t.setString("phone", c.Phone)
	t.setString("email", c.Email)
	t.setString("company", c.Company)
}

// Keys are added in sorted order so the case-folded index does not depend on
// map iteration when two keys differ only in case.
func addCustomFields(t *tokenTable, c *model.Contact) {
	if c == nil || len(c.CustomFields) == 0 {
		return
	}
	for _, k := range sortedKeys(c.CustomFields) {
		t.setString(k, c.CustomFields[k])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
