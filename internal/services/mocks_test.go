package services

import (
	"context"
	"sync"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockContactStore struct {
	mock.Mock
}

func (m *MockContactStore) List(ctx context.Context) ([]*model.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Contact), args.Error(1)
}

func (m *MockContactStore) Get(ctx context.Context, id string) (*model.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactStore) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(context.Context, *model.Contact) *model.Contact); ok {
		return fn(ctx, c), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactStore) Update(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(context.Context, *model.Contact) *model.Contact); ok {
		return fn(ctx, c), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockGroupStore struct {
	mock.Mock
}

func (m *MockGroupStore) List(ctx context.Context) ([]*model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Group), args.Error(1)
}

func (m *MockGroupStore) Get(ctx context.Context, id string) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupStore) Create(ctx context.Context, g *model.Group) (*model.Group, error) {
	args := m.Called(ctx, g)
	if fn, ok := args.Get(0).(func(context.Context, *model.Group) *model.Group); ok {
		return fn(ctx, g), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupStore) Update(ctx context.Context, g *model.Group) (*model.Group, error) {
	args := m.Called(ctx, g)
	if fn, ok := args.Get(0).(func(context.Context, *model.Group) *model.Group); ok {
		return fn(ctx, g), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockTemplateStore struct {
	mock.Mock
}

func (m *MockTemplateStore) List(ctx context.Context) ([]*model.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Template), args.Error(1)
}

func (m *MockTemplateStore) Get(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateStore) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	args := m.Called(ctx, t)
	if fn, ok := args.Get(0).(func(context.Context, *model.Template) *model.Template); ok {
		return fn(ctx, t), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateStore) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	args := m.Called(ctx, t)
	if fn, ok := args.Get(0).(func(context.Context, *model.Template) *model.Template); ok {
		return fn(ctx, t), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) Save(ctx context.Context, run *model.BulkRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRunStore) Get(ctx context.Context, id string) (*model.BulkRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BulkRun), args.Error(1)
}

func (m *MockRunStore) Recent(ctx context.Context, limit int64) ([]*model.BulkRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BulkRun), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) IsReady() bool {
	return m.Called().Bool(0)
}

func (m *MockTransport) SendMessage(ctx context.Context, target, message string) error {
	return m.Called(ctx, target, message).Error(0)
}

type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) Publish(eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}
