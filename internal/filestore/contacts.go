package filestore

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/pkg/errors"
)

type ContactStore struct {
	s *Store
}

func (c *ContactStore) List(ctx context.Context) ([]*model.Contact, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return readFile[*model.Contact](c.s.contactsFile)
}

func (c *ContactStore) Get(ctx context.Context, id string) (*model.Contact, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	contacts, err := readFile[*model.Contact](c.s.contactsFile)
	if err != nil {
		return nil, err
	}
	for _, ct := range contacts {
		if ct.ID == id {
			return ct, nil
		}
	}
	return nil, model.ErrContactNotFound
}

func (c *ContactStore) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	contacts, err := readFile[*model.Contact](c.s.contactsFile)
	if err != nil {
		return nil, err
	}
	for _, ct := range contacts {
		if ct.ID == contact.ID {
			return nil, errors.Errorf("contact %s already exists", contact.ID)
		}
	}
	contacts = append(contacts, contact.Clone())
	if err := writeFile(c.s.contactsFile, contacts); err != nil {
		return nil, err
	}
	return contact, nil
}

func (c *ContactStore) Update(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	contacts, err := readFile[*model.Contact](c.s.contactsFile)
	if err != nil {
		return nil, err
	}
	for i, ct := range contacts {
		if ct.ID == contact.ID {
			contacts[i] = contact.Clone()
			if err := writeFile(c.s.contactsFile, contacts); err != nil {
				return nil, err
			}
			return contact, nil
		}
	}
	return nil, model.ErrContactNotFound
}

// Delete removes the contact and strips its id from every group.
func (c *ContactStore) Delete(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	contacts, err := readFile[*model.Contact](c.s.contactsFile)
	if err != nil {
		return err
	}
	kept := contacts[:0]
	for _, ct := range contacts {
		if ct.ID != id {
			kept = append(kept, ct)
		}
	}
	if len(kept) == len(contacts) {
		return model.ErrContactNotFound
	}
	if err := writeFile(c.s.contactsFile, kept); err != nil {
		return err
	}

	groups, err := readFile[*model.Group](c.s.groupsFile)
	if err != nil {
		return err
	}
	changed := false
	for _, g := range groups {
		if g.RemoveContact(id) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return writeFile(c.s.groupsFile, groups)
}
