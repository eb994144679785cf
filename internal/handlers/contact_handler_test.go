package handlers

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) List(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Contact), args.Error(1)
}

func (m *MockContactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactService) Create(ctx context.Context, p model.ContactCreateRequest) (*model.Contact, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactService) Update(ctx context.Context, id string, p model.ContactUpdateRequest) (*model.Contact, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContactService) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContactService) Import(ctx context.Context, r io.Reader) ([]*model.Contact, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Contact), args.Error(1)
}

func TestContactHandler_ListContacts(t *testing.T) {
	svc := new(MockContactService)
	handler := NewContactHandler(svc)

	svc.On("List", mock.Anything, model.ContactFilter{Search: "ann", Tag: "vip"}).
		Return([]*model.Contact{{ID: "ann-1", Name: "Ann"}}, nil)

	ctx := setupTestContext("GET", "/api/v1/contacts?search=ann&tag=vip", nil)
	handler.ListContacts(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	contacts := body["contacts"].([]any)
	assert.Equal(t, "ann-1", contacts[0].(map[string]any)["id"])
	svc.AssertExpectations(t)
}

func TestContactHandler_CreateContact(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockContactService)
		handler := NewContactHandler(svc)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.ContactCreateRequest) bool {
			return p.Name == "Ann" && p.Phone == "+111"
		})).Return(&model.Contact{ID: "ann-1", Name: "Ann", Phone: "+111"}, nil)

		ctx := setupTestContext("POST", "/api/v1/contacts", mustJSON(t, map[string]any{"name": "Ann", "phone": "+111"}))
		handler.CreateContact(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, "ann-1", body["contact"].(map[string]any)["id"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := NewContactHandler(new(MockContactService))
		ctx := setupTestContext("POST", "/api/v1/contacts", []byte("{nope"))
		handler.CreateContact(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["message"], "invalid JSON")
	})

	t.Run("validation error", func(t *testing.T) {
		svc := new(MockContactService)
		handler := NewContactHandler(svc)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrNameAndPhoneRequired)

		ctx := setupTestContext("POST", "/api/v1/contacts", []byte(`{}`))
		handler.CreateContact(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockContactService)
		handler := NewContactHandler(svc)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

		ctx := setupTestContext("POST", "/api/v1/contacts", []byte(`{"name":"a","phone":"1"}`))
		handler.CreateContact(ctx)
		assert.Equal(t, 500, ctx.Response.StatusCode())
		assert.Equal(t, "disk full", decodeBody(t, ctx)["message"])
	})
}

func TestContactHandler_NotFound(t *testing.T) {
	svc := new(MockContactService)
	handler := NewContactHandler(svc)
	svc.On("Get", mock.Anything, "ghost").Return(nil, model.ErrContactNotFound)
	svc.On("Delete", mock.Anything, "ghost").Return(model.ErrContactNotFound)

	ctx := setupTestContext("GET", "/api/v1/contacts/ghost", nil)
	ctx.SetUserValue("id", "ghost")
	handler.GetContact(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())

	ctx = setupTestContext("DELETE", "/api/v1/contacts/ghost", nil)
	ctx.SetUserValue("id", "ghost")
	handler.DeleteContact(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())
}

func TestContactHandler_ImportContacts(t *testing.T) {
	app := newTestApp(t)
	handler := NewContactHandler(app.contacts)

	t.Run("imports valid rows", func(t *testing.T) {
		csv := "name,phone,tags,city\nAnn,+1111,a;b,Oslo\nNo Phone,,x,y\n"
		ctx := setupMultipartContext(t, "/api/v1/contacts/import", nil, csv)
		handler.ImportContacts(ctx)

		require.Equal(t, 200, ctx.Response.StatusCode(), string(ctx.Response.Body()))
		assert.Equal(t, float64(1), decodeBody(t, ctx)["imported"])

		all, err := app.contacts.List(context.Background(), model.ContactFilter{Search: "ann"})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Oslo", all[0].CustomFields["city"])
	})

	t.Run("missing file", func(t *testing.T) {
		ctx := setupMultipartContext(t, "/api/v1/contacts/import", map[string]string{"x": "y"}, "")
		handler.ImportContacts(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("missing columns", func(t *testing.T) {
		ctx := setupMultipartContext(t, "/api/v1/contacts/import", nil, "email\na@b.c\n")
		handler.ImportContacts(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}
