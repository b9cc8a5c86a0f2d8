package checkout

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// Contact is how the restaurant reaches the customer about the order.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ParseContact splits the composite contact string the UI collects. A token
// with an "@" is the email, anything else joins the phone number.
func ParseContact(raw string) Contact {
	var c Contact
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '|' || r == '\n'
	})

	var phone []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.Contains(f, "@") {
			if c.Email == "" {
				c.Email = f
			}
			continue
		}
		phone = append(phone, f)
	}
	c.Phone = strings.Join(phone, " ")
	return c
}

// Merge fills empty slots from other.
func (c Contact) Merge(other Contact) Contact {
	if c.Name == "" {
		c.Name = other.Name
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.Phone == "" {
		c.Phone = other.Phone
	}
	return c
}

func (c Contact) Trimmed() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsPhone accepts 7 to 15 digits with an optional leading "+".
func IsPhone(s string) bool {
	p := phoneStrip.Replace(strings.TrimSpace(s))
	p = strings.TrimPrefix(p, "+")
	if len(p) < 7 || len(p) > 15 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
