// Package seed provides the demo address book and templates a fresh
// installation starts with.
package seed

import (
	_ "embed"
	"time"

	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/internal/personalization"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type Data struct {
	Contacts  []*model.Contact
	Groups    []*model.Group
	Templates []*model.Template
}

type document struct {
	Templates []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Content  string `yaml:"content"`
		Category string `yaml:"category"`
	} `yaml:"templates"`
	Contacts []struct {
		ID           string            `yaml:"id"`
		Name         string            `yaml:"name"`
		Phone        string            `yaml:"phone"`
		Email        string            `yaml:"email"`
		Company      string            `yaml:"company"`
		Tags         []string          `yaml:"tags"`
		CustomFields map[string]string `yaml:"customFields"`
	} `yaml:"contacts"`
	Groups []struct {
		ID          string   `yaml:"id"`
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		ContactIDs  []string `yaml:"contactIds"`
	} `yaml:"groups"`
}

// Load returns the seed records stamped with now.
func Load(now time.Time) (*Data, error) {
	var doc document
	if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
		return nil, errors.Wrap(err, "parse seed data")
	}

	d := &Data{}
	for _, t := range doc.Templates {
		d.Templates = append(d.Templates, &model.Template{
			ID:        t.ID,
			Name:      t.Name,
			Content:   t.Content,
			Category:  t.Category,
			Variables: personalization.ExtractTokens(t.Content),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	for _, c := range doc.Contacts {
		d.Contacts = append(d.Contacts, &model.Contact{
			ID:           c.ID,
			Name:         c.Name,
			Phone:        c.Phone,
			Email:        c.Email,
			Company:      c.Company,
			Tags:         model.NormalizeTags(c.Tags),
			CustomFields: c.CustomFields,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	for _, g := range doc.Groups {
		d.Groups = append(d.Groups, &model.Group{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			ContactIDs:  model.UniqueIDs(g.ContactIDs),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return d, nil
}
