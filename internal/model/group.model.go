package model

import "time"

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ContactIDs  []string  `json:"contactIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	cp := *g
	cp.ContactIDs = append([]string(nil), g.ContactIDs...)
	return &cp
}

// HasContact reports whether id is a member of the group.
func (g *Group) HasContact(id string) bool {
	return containsString(g.ContactIDs, id)
}

// RemoveContact drops id from the membership list and reports whether it was present.
func (g *Group) RemoveContact(id string) bool {
	kept := g.ContactIDs[:0]
	removed := false
	for _, cid := range g.ContactIDs {
		if cid == id {
			removed = true
			continue
		}
		kept = append(kept, cid)
	}
	g.ContactIDs = kept
	return removed
}

type GroupCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ContactIDs  []string `json:"contactIds"`
}

type GroupUpdateRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	ContactIDs  *[]string `json:"contactIds"`
}

// UniqueIDs removes empty and duplicate ids keeping the first occurrence.
func UniqueIDs(ids []string) []string {
	return NormalizeTags(ids)
}
