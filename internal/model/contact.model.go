package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrTemplateNotFound = errors.New("template not found")
)

type Contact struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Company      string            `json:"company"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"customFields"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy, so result snapshots never alias store data.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Tags = append([]string(nil), c.Tags...)
	if c.CustomFields != nil {
		cp.CustomFields = make(map[string]string, len(c.CustomFields))
		for k, v := range c.CustomFields {
			cp.CustomFields[k] = v
		}
	}
	return &cp
}

type ContactCreateRequest struct {
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Company      string            `json:"company"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"customFields"`
}

// ContactUpdateRequest is a partial update: nil fields are left untouched.
type ContactUpdateRequest struct {
	Name         *string           `json:"name"`
	Phone        *string           `json:"phone"`
	Email        *string           `json:"email"`
	Company      *string           `json:"company"`
	Tags         *[]string         `json:"tags"`
	CustomFields map[string]string `json:"customFields"`
}

type ContactFilter struct {
	Search string
	Tag    string
}

// Matches reports whether the contact satisfies the filter. Search is a
// case-insensitive substring match over name, phone, email, company and tags.
func (f ContactFilter) Matches(c *Contact) bool {
	if f.Tag != "" && !containsString(c.Tags, f.Tag) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	for _, v := range []string{c.Name, c.Phone, c.Email, c.Company} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ValidPhone is a loose check: at least one digit after trimming.
func ValidPhone(phone string) bool {
	for _, r := range strings.TrimSpace(phone) {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// NormalizeTags trims entries, drops empty ones and removes duplicates
// keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
