package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/personalization"
)

type TemplateService struct {
	templates TemplateStore
	now       func() time.Time
}

func NewTemplateService(templates TemplateStore) *TemplateService {
	return &TemplateService{
		templates: templates,
		now:       time.Now,
	}
}

func (s *TemplateService) List(ctx context.Context) ([]*model.Template, error) {
	return s.templates.List(ctx)
}

func (s *TemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	return s.templates.Get(ctx, id)
}

func (s *TemplateService) Create(ctx context.Context, p model.TemplateCreateRequest) (*model.Template, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" || p.Content == "" {
		return nil, ErrNameAndContent
	}
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = model.DefaultTemplateCategory
	}
	now := s.now()
	t := &model.Template{
		ID:        model.NewID(name),
		Name:      name,
		Content:   p.Content,
		Category:  category,
		Variables: personalization.ExtractTokens(p.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.templates.Create(ctx, t)
}

// Update applies the supplied fields and recomputes the variables from the
// resulting content.
func (s *TemplateService) Update(ctx context.Context, id string, p model.TemplateUpdateRequest) (*model.Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ErrNameAndContent
		}
		t.Name = name
	}
	if p.Content != nil {
		if *p.Content == "" {
			return nil, ErrNameAndContent
		}
		t.Content = *p.Content
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
		if t.Category == "" {
			t.Category = model.DefaultTemplateCategory
		}
	}
	t.Variables = personalization.ExtractTokens(t.Content)
	t.UpdatedAt = s.now()
	return s.templates.Update(ctx, t)
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}

func (s *TemplateService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	categories := []string{}
	for _, t := range all {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		categories = append(categories, t.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Process fills the template's placeholders with variables. Placeholders
// without a non-empty value are left as they are.
func (s *TemplateService) Process(ctx context.Context, id string, variables map[string]any) (string, *model.Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return personalization.Fill(t.Content, variables), t, nil
}
