package services

import (
	"context"
	"errors"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/personalization"
)

type PersonalizedBulkRequest struct {
	TemplateID   string         `json:"templateId"`
	ContactIDs   []string       `json:"contactIds"`
	CustomTokens map[string]any `json:"customTokens"`
	Delay        *int64         `json:"delay"`
}

type GroupBulkRequest struct {
	TemplateID   string         `json:"templateId"`
	GroupID      string         `json:"groupId"`
	CustomTokens map[string]any `json:"customTokens"`
	Delay        *int64         `json:"delay"`
}

// SendPersonalized resolves the template for each stored contact and sends
// the result. Unknown contact ids are skipped.
func (s *MessagingService) SendPersonalized(ctx context.Context, req PersonalizedBulkRequest) (*model.BulkReport, error) {
	if req.TemplateID == "" || req.ContactIDs == nil {
		return nil, ErrTemplateAndContacts
	}
	delay, err := s.delay(req.Delay)
	if err != nil {
		return nil, err
	}
	if !s.transport.IsReady() {
		return nil, ErrNotConnected
	}
	tpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.lookupContacts(ctx, req.ContactIDs)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, ErrNoValidContacts
	}
	return s.run(ctx, bulkRun{
		kind:       model.BulkKindPersonalized,
		templateID: tpl.ID,
		delay:      delay,
		recipients: s.recipients(contactTargets(contacts), tpl.Content, true, req.CustomTokens),
	})
}

// SendPersonalizedGroup is SendPersonalized over the members of a group.
func (s *MessagingService) SendPersonalizedGroup(ctx context.Context, req GroupBulkRequest) (*model.BulkReport, error) {
	if req.TemplateID == "" || req.GroupID == "" {
		return nil, ErrTemplateAndGroup
	}
	delay, err := s.delay(req.Delay)
	if err != nil {
		return nil, err
	}
	if !s.transport.IsReady() {
		return nil, ErrNotConnected
	}
	tpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.groups.Contacts(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, ErrNoValidContacts
	}
	return s.run(ctx, bulkRun{
		kind:       model.BulkKindGroup,
		templateID: tpl.ID,
		groupID:    req.GroupID,
		delay:      delay,
		recipients: s.recipients(contactTargets(contacts), tpl.Content, true, req.CustomTokens),
	})
}

// Personalize resolves message for one contact. An unknown or empty
// contactID resolves against an empty contact.
func (s *MessagingService) Personalize(ctx context.Context, message, contactID string, tokens map[string]any) (string, *model.Contact, error) {
	if message == "" {
		return "", nil, ErrMessageRequired
	}
	var contact *model.Contact
	if contactID != "" {
		c, err := s.contacts.Get(ctx, contactID)
		if err != nil && !errors.Is(err, model.ErrContactNotFound) {
			return "", nil, err
		}
		contact = c
	}
	return s.resolver.Resolve(message, contact, tokens), contact, nil
}

// Previews renders the template for the first PreviewLimit contact ids.
func (s *MessagingService) Previews(ctx context.Context, templateID string, contactIDs []string, tokens map[string]any) ([]model.Preview, error) {
	if templateID == "" || contactIDs == nil {
		return nil, ErrTemplateAndContacts
	}
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(contactIDs) > s.opts.PreviewLimit {
		contactIDs = contactIDs[:s.opts.PreviewLimit]
	}
	contacts, err := s.lookupContacts(ctx, contactIDs)
	if err != nil {
		return nil, err
	}
	previews := make([]model.Preview, 0, len(contacts))
	for _, c := range contacts {
		previews = append(previews, model.Preview{
			Contact: c,
			Preview: s.resolver.Resolve(tpl.Content, c, tokens),
		})
	}
	return previews, nil
}

func (s *MessagingService) ValidateTokens(ctx context.Context, message string, contactIDs []string) ([]model.TokenValidation, model.ValidationSummary, error) {
	if message == "" || contactIDs == nil {
		return nil, model.ValidationSummary{}, ErrMessageAndContacts
	}
	contacts, err := s.lookupContacts(ctx, contactIDs)
	if err != nil {
		return nil, model.ValidationSummary{}, err
	}
	validation := s.resolver.Validate(message, contacts)
	return validation, model.SummarizeValidation(validation), nil
}

func (s *MessagingService) ExtractTokens(message string) ([]string, error) {
	if message == "" {
		return nil, ErrMessageRequired
	}
	return personalization.ExtractTokens(message), nil
}

func (s *MessagingService) SuggestedTokens(ctx context.Context) (model.SuggestedTokens, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return model.SuggestedTokens{}, err
	}
	return s.resolver.Suggest(contacts), nil
}

// lookupContacts keeps the order of ids and skips ids that are not stored.
func (s *MessagingService) lookupContacts(ctx context.Context, ids []string) ([]*model.Contact, error) {
	out := make([]*model.Contact, 0, len(ids))
	for _, id := range ids {
		c, err := s.contacts.Get(ctx, id)
		if errors.Is(err, model.ErrContactNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func contactTargets(contacts []*model.Contact) []model.Recipient {
	out := make([]model.Recipient, len(contacts))
	for i, c := range contacts {
		out[i] = model.Recipient{Phone: c.Phone, Contact: c}
	}
	return out
}
