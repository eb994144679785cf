package whatsapp

import (
	"strings"
	"unicode"

	"go.mau.fi/whatsmeow/types"
)

// ParseTarget turns a phone number or a full JID into a JID. Anything
// containing '@' is parsed as a JID; otherwise every non-digit is dropped and
// the digits address a user on s.whatsapp.net.
func ParseTarget(target string) (types.JID, error) {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "@") {
		jid, err := types.ParseJID(target)
		if err != nil || jid.User == "" {
			return types.EmptyJID, ErrInvalidPhone
		}
		return jid, nil
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, target)
	if digits == "" {
		return types.EmptyJID, ErrInvalidPhone
	}
	return types.NewJID(digits, types.DefaultUserServer), nil
}
