package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nimasrn/wa-messenger/internal/csvimport"
	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/logger"
)

type ContactService struct {
	contacts ContactStore
	now      func() time.Time
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *ContactService) List(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	all, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Contact, 0, len(all))
	for _, c := range all {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	return s.contacts.Get(ctx, id)
}

func (s *ContactService) Create(ctx context.Context, p model.ContactCreateRequest) (*model.Contact, error) {
	name := strings.TrimSpace(p.Name)
	phone := strings.TrimSpace(p.Phone)
	if name == "" || phone == "" {
		return nil, ErrNameAndPhoneRequired
	}
	if !model.ValidPhone(phone) {
		return nil, ErrInvalidPhone
	}

	fields := p.CustomFields
	if fields == nil {
		fields = map[string]string{}
	}
	now := s.now()
	c := &model.Contact{
		ID:           model.NewID(name),
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(p.Email),
		Company:      strings.TrimSpace(p.Company),
		Tags:         model.NormalizeTags(p.Tags),
		CustomFields: fields,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.contacts.Create(ctx, c)
}

// Update merges the supplied fields into the stored contact. CustomFields,
// when present, replaces the whole map.
func (s *ContactService) Update(ctx context.Context, id string, p model.ContactUpdateRequest) (*model.Contact, error) {
	c, err := s.contacts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ErrNameAndPhoneRequired
		}
		c.Name = name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if phone == "" {
			return nil, ErrNameAndPhoneRequired
		}
		if !model.ValidPhone(phone) {
			return nil, ErrInvalidPhone
		}
		c.Phone = phone
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Company != nil {
		c.Company = strings.TrimSpace(*p.Company)
	}
	if p.Tags != nil {
		c.Tags = model.NormalizeTags(*p.Tags)
	}
	if p.CustomFields != nil {
		c.CustomFields = p.CustomFields
	}
	c.UpdatedAt = s.now()
	return s.contacts.Update(ctx, c)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.contacts.Delete(ctx, id)
}

// Tags returns every tag in use, sorted.
func (s *ContactService) Tags(ctx context.Context) ([]string, error) {
	all, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	tags := []string{}
	for _, c := range all {
		for _, t := range c.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// Import creates a contact for every usable CSV row. Rows that fail
// validation are skipped.
func (s *ContactService) Import(ctx context.Context, r io.Reader) ([]*model.Contact, error) {
	rows, err := csvimport.ParseContacts(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	created := make([]*model.Contact, 0, len(rows))
	for i, row := range rows {
		c, err := s.Create(ctx, row)
		if errors.Is(err, ErrInvalidPhone) || errors.Is(err, ErrNameAndPhoneRequired) {
			logger.Warn("[contacts] skipping CSV row", "row", i+2, "error", err)
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, c)
	}
	logger.Info("[contacts] CSV import finished", "rows", len(rows), "created", len(created))
	return created, nil
}
