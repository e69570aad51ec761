package waha

import "strings"

// Gateway chat address suffixes
const (
	IndividualChatSuffix = "@c.us"
	GroupChatSuffix      = "@g.us"
)

// FormatNumber canonicalizes a phone-number-like string into the gateway's
// chat address form. Digit structure is not validated; malformed input is
// passed through with the suffix appended.
func FormatNumber(number string) string {
	number = strings.TrimPrefix(number, "+")
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")

	if !strings.HasSuffix(number, IndividualChatSuffix) && !strings.HasSuffix(number, GroupChatSuffix) {
		number += IndividualChatSuffix
	}

	return number
}

// StripChatSuffix removes the individual-chat suffix from an inbound sender
// address. Group addresses keep their suffix so the origin stays visible.
func StripChatSuffix(address string) string {
	return strings.TrimSuffix(address, IndividualChatSuffix)
}
