package xero

import "strings"

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ExtractContactDetails picks the phone number and first address line of a
// contact. DEFAULT phones and STREET addresses win over other kinds.
func ExtractContactDetails(phones []Phone, addresses []Address) (phone, address string) {
	var preferredPhones, otherPhones []string
	for _, p := range phones {
		if strings.EqualFold(p.PhoneType, phoneTypeDefault) {
			preferredPhones = append(preferredPhones, p.PhoneNumber)
		} else {
			otherPhones = append(otherPhones, p.PhoneNumber)
		}
	}

	var preferredLines, otherLines []string
	for _, a := range addresses {
		if strings.EqualFold(a.AddressType, addressTypeStreet) {
			preferredLines = append(preferredLines, a.AddressLine1)
		} else {
			otherLines = append(otherLines, a.AddressLine1)
		}
	}

	phone = FirstNonEmpty(append(preferredPhones, otherPhones...)...)
	address = FirstNonEmpty(append(preferredLines, otherLines...)...)
	return phone, address
}
