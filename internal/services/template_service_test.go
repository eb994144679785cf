package services

import (
	"context"
	"testing"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func echoTemplate(_ context.Context, t *model.Template) *model.Template { return t }

func TestTemplateService_CreateDerivesVariables(t *testing.T) {
	ctx := context.Background()
	store := new(MockTemplateStore)
	svc := NewTemplateService(store)
	store.On("Create", ctx, mock.AnythingOfType("*model.Template")).Return(echoTemplate, nil)

	tpl, err := svc.Create(ctx, model.TemplateCreateRequest{
		Name:    "Hello",
		Content: "Hi {{name}}, {{company}} says {{name}}",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "company"}, tpl.Variables)
	assert.Equal(t, model.DefaultTemplateCategory, tpl.Category)

	_, err = svc.Create(ctx, model.TemplateCreateRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrNameAndContent)
}

func TestTemplateService_UpdateRecomputesVariables(t *testing.T) {
	ctx := context.Background()
	store := new(MockTemplateStore)
	svc := NewTemplateService(store)

	store.On("Get", ctx, "t1").Return(&model.Template{ID: "t1", Name: "T", Content: "{{a}}", Category: "x", Variables: []string{"a"}}, nil)
	store.On("Update", ctx, mock.AnythingOfType("*model.Template")).Return(echoTemplate, nil)

	content := "{{b}} and {{c}}"
	category := ""
	tpl, err := svc.Update(ctx, "t1", model.TemplateUpdateRequest{Content: &content, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, tpl.Variables)
	assert.Equal(t, model.DefaultTemplateCategory, tpl.Category)
}

func TestTemplateService_CategoriesAndProcess(t *testing.T) {
	ctx := context.Background()
	store := new(MockTemplateStore)
	svc := NewTemplateService(store)

	store.On("List", ctx).Return([]*model.Template{
		{ID: "1", Category: "marketing"},
		{ID: "2", Category: "general"},
		{ID: "3", Category: "marketing"},
	}, nil)
	store.On("Get", ctx, "t1").Return(&model.Template{ID: "t1", Content: "Hi {{name}}, code {{code}}"}, nil)
	store.On("Get", ctx, "missing").Return(nil, model.ErrTemplateNotFound)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "marketing"}, cats)

	out, tpl, err := svc.Process(ctx, "t1", map[string]any{"name": "Ann", "code": ""})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann, code {{code}}", out)
	assert.Equal(t, "t1", tpl.ID)

	_, _, err = svc.Process(ctx, "missing", nil)
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}
