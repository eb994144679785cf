package model

import "time"

const DefaultTemplateCategory = "general"

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Variables []string  `json:"variables"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Variables = append([]string(nil), t.Variables...)
	return &cp
}

type TemplateCreateRequest struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type TemplateUpdateRequest struct {
	Name     *string `json:"name"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}
