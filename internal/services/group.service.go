package services

import (
	"context"
	"strings"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
)

type GroupService struct {
	groups   GroupStore
	contacts ContactStore
	now      func() time.Time
}

func NewGroupService(groups GroupStore, contacts ContactStore) *GroupService {
	return &GroupService{
		groups:   groups,
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *GroupService) List(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}

func (s *GroupService) Get(ctx context.Context, id string) (*model.Group, error) {
	return s.groups.Get(ctx, id)
}

func (s *GroupService) Create(ctx context.Context, p model.GroupCreateRequest) (*model.Group, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := s.now()
	g := &model.Group{
		ID:          model.NewID(name),
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		ContactIDs:  model.UniqueIDs(p.ContactIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.groups.Create(ctx, g)
}

func (s *GroupService) Update(ctx context.Context, id string, p model.GroupUpdateRequest) (*model.Group, error) {
	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		g.Name = name
	}
	if p.Description != nil {
		g.Description = strings.TrimSpace(*p.Description)
	}
	if p.ContactIDs != nil {
		g.ContactIDs = model.UniqueIDs(*p.ContactIDs)
	}
	g.UpdatedAt = s.now()
	return s.groups.Update(ctx, g)
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	return s.groups.Delete(ctx, id)
}

// AddContact appends contactID to the group. Adding a member twice is a
// no-op.
func (s *GroupService) AddContact(ctx context.Context, groupID, contactID string) (*model.Group, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.HasContact(contactID) {
		return g, nil
	}
	g.ContactIDs = append(g.ContactIDs, contactID)
	g.UpdatedAt = s.now()
	return s.groups.Update(ctx, g)
}

func (s *GroupService) RemoveContact(ctx context.Context, groupID, contactID string) (*model.Group, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.RemoveContact(contactID) {
		return g, nil
	}
	g.UpdatedAt = s.now()
	return s.groups.Update(ctx, g)
}

// Contacts resolves the group's members in membership order. Ids without a
// stored contact are skipped.
func (s *GroupService) Contacts(ctx context.Context, groupID string) ([]*model.Contact, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	all, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Contact, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	members := make([]*model.Contact, 0, len(g.ContactIDs))
	for _, id := range g.ContactIDs {
		if c, ok := byID[id]; ok {
			members = append(members, c)
		}
	}
	return members, nil
}
