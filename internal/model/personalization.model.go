package model

type TokenValidation struct {
	Contact       *Contact `json:"contact"`
	MissingTokens []string `json:"missingTokens"`
	IsValid       bool     `json:"isValid"`
}

type ValidationSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

func SummarizeValidation(v []TokenValidation) ValidationSummary {
	s := ValidationSummary{Total: len(v)}
	for _, item := range v {
		if item.IsValid {
			s.Valid++
		} else {
			s.Invalid++
		}
	}
	return s
}

type Preview struct {
	Contact *Contact `json:"contact"`
	Preview string   `json:"preview"`
}

type SuggestedTokens struct {
	Default []string `json:"default"`
	Contact []string `json:"contact"`
	Custom  []string `json:"custom"`
}
