package filestore

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/pkg/errors"
)

type GroupStore struct {
	s *Store
}

func (g *GroupStore) List(ctx context.Context) ([]*model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return readFile[*model.Group](g.s.groupsFile)
}

func (g *GroupStore) Get(ctx context.Context, id string) (*model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	groups, err := readFile[*model.Group](g.s.groupsFile)
	if err != nil {
		return nil, err
	}
	for _, gr := range groups {
		if gr.ID == id {
			return gr, nil
		}
	}
	return nil, model.ErrGroupNotFound
}

func (g *GroupStore) Create(ctx context.Context, group *model.Group) (*model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	groups, err := readFile[*model.Group](g.s.groupsFile)
	if err != nil {
		return nil, err
	}
	for _, gr := range groups {
		if gr.ID == group.ID {
			return nil, errors.Errorf("group %s already exists", group.ID)
		}
	}
	groups = append(groups, group.Clone())
	if err := writeFile(g.s.groupsFile, groups); err != nil {
		return nil, err
	}
	return group, nil
}

func (g *GroupStore) Update(ctx context.Context, group *model.Group) (*model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	groups, err := readFile[*model.Group](g.s.groupsFile)
	if err != nil {
		return nil, err
	}
	for i, gr := range groups {
		if gr.ID == group.ID {
			groups[i] = group.Clone()
			if err := writeFile(g.s.groupsFile, groups); err != nil {
				return nil, err
			}
			return group, nil
		}
	}
	return nil, model.ErrGroupNotFound
}

func (g *GroupStore) Delete(ctx context.Context, id string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	groups, err := readFile[*model.Group](g.s.groupsFile)
	if err != nil {
		return err
	}
	kept := groups[:0]
	for _, gr := range groups {
		if gr.ID != id {
			kept = append(kept, gr)
		}
	}
	if len(kept) == len(groups) {
		return model.ErrGroupNotFound
	}
	return writeFile(g.s.groupsFile, kept)
}
