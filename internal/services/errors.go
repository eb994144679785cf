package services

import (
	"errors"

	"github.com/nimasrn/wa-messenger/internal/history"
	"github.com/nimasrn/wa-messenger/internal/model"
)

var (
	ErrNameRequired         = errors.New("name is required")
	ErrNameAndPhoneRequired = errors.New("name and phone are required")
	ErrInvalidPhone         = errors.New("phone must contain at least one digit")
	ErrNameAndContent       = errors.New("name and content are required")
	ErrMessageRequired      = errors.New("message is required")
	ErrNumberRequired       = errors.New("number and message are required")
	ErrRecipientsRequired   = errors.New("contacts array is required")
	ErrNoValidContacts      = errors.New("no valid contacts found")
	ErrNotConnected         = errors.New("WhatsApp is not connected")
	ErrInvalidDelay         = errors.New("delay must not be negative")
	ErrInvalidRecipient     = errors.New("every recipient needs a phone number")
	ErrTemplateAndContacts  = errors.New("template ID and contact IDs are required")
	ErrTemplateAndGroup     = errors.New("template ID and group ID are required")
	ErrMessageAndContacts   = errors.New("message and contact IDs are required")
	ErrInvalidCSV           = errors.New("invalid CSV file")
	ErrHistoryDisabled      = errors.New("bulk run history is not enabled")
)

var validationErrors = []error{
	ErrNameRequired,
	ErrNameAndPhoneRequired,
	ErrInvalidPhone,
	ErrNameAndContent,
	ErrMessageRequired,
	ErrNumberRequired,
	ErrRecipientsRequired,
	ErrNoValidContacts,
	ErrNotConnected,
	ErrInvalidDelay,
	ErrInvalidRecipient,
	ErrTemplateAndContacts,
	ErrTemplateAndGroup,
	ErrMessageAndContacts,
	ErrInvalidCSV,
	ErrHistoryDisabled,
}

var notFoundErrors = []error{
	model.ErrContactNotFound,
	model.ErrGroupNotFound,
	model.ErrTemplateNotFound,
	history.ErrRunNotFound,
}

// IsValidation reports whether err was caused by the caller's input.
func IsValidation(err error) bool {
	return isAny(err, validationErrors)
}

func IsNotFound(err error) bool {
	return isAny(err, notFoundErrors)
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
