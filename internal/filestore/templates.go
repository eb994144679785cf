package filestore

import (
	"context"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/pkg/errors"
)

type TemplateStore struct {
	s *Store
}

func (t *TemplateStore) List(ctx context.Context) ([]*model.Template, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return readFile[*model.Template](t.s.templatesFile)
}

func (t *TemplateStore) Get(ctx context.Context, id string) (*model.Template, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	templates, err := readFile[*model.Template](t.s.templatesFile)
	if err != nil {
		return nil, err
	}
	for _, tpl := range templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return nil, model.ErrTemplateNotFound
}

func (t *TemplateStore) Create(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	templates, err := readFile[*model.Template](t.s.templatesFile)
	if err != nil {
		return nil, err
	}
	for _, existing := range templates {
		if existing.ID == tpl.ID {
			return nil, errors.Errorf("template %s already exists", tpl.ID)
		}
	}
	templates = append(templates, tpl.Clone())
	if err := writeFile(t.s.templatesFile, templates); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (t *TemplateStore) Update(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	templates, err := readFile[*model.Template](t.s.templatesFile)
	if err != nil {
		return nil, err
	}
	for i, existing := range templates {
		if existing.ID == tpl.ID {
			templates[i] = tpl.Clone()
			if err := writeFile(t.s.templatesFile, templates); err != nil {
				return nil, err
			}
			return tpl, nil
		}
	}
	return nil, model.ErrTemplateNotFound
}

func (t *TemplateStore) Delete(ctx context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	templates, err := readFile[*model.Template](t.s.templatesFile)
	if err != nil {
		return err
	}
	kept := templates[:0]
	for _, tpl := range templates {
		if tpl.ID != id {
			kept = append(kept, tpl)
		}
	}
	if len(kept) == len(templates) {
		return model.ErrTemplateNotFound
	}
	return writeFile(t.s.templatesFile, kept)
}
