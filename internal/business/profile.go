// Package business holds the static profile of the handyman business that
// the intake pipeline quotes for: contact details, the sender identity for
// outbound mail and the service types the contact form offers.
package business

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultServiceType is the catch-all used when a submission names an
// unknown service.
const DefaultServiceType = "General Repair"

var defaultServiceTypes = []string{
	"General Repair",
	"Drywall & Painting",
	"Plumbing (Light)",
	"Electrical (Light)",
	"Furniture Assembly",
	"Mounting & Hanging",
	"Other",
}

// Profile describes the business.
type Profile struct {
	Name         string   `yaml:"name"`
	OwnerName    string   `yaml:"owner_name"`
	Tagline      string   `yaml:"tagline"`
	Phone        string   `yaml:"phone"`
	SiteURL      string   `yaml:"site_url"`
	OwnerEmail   string   `yaml:"owner_email"`
	FromEmail    string   `yaml:"from_email"`
	FromName     string   `yaml:"from_name"`
	ServiceArea  string   `yaml:"service_area"`
	ServiceTypes []string `yaml:"service_types"`
	// DefaultServiceType must be one of ServiceTypes.
	DefaultServiceType string `yaml:"default_service_type"`
	// ResponseWindow is echoed to customers, e.g. "within 24 hours".
	ResponseWindow string `yaml:"response_window"`
}

// Default returns the built-in profile.
func Default() *Profile {
	types := make([]string, len(defaultServiceTypes))
	copy(types, defaultServiceTypes)
	return &Profile{
		Name:               "Fix It San Clemente",
		OwnerName:          "Paul Ries",
		Tagline:            "Your Local Handyman",
		Phone:              "(619) 727-7975",
		SiteURL:            "https://fixitsanclemente.com",
		OwnerEmail:         "paul@fixitsanclemente.com",
		FromEmail:          "quotes@fixitsanclemente.com",
		FromName:           "Fix It San Clemente",
		ServiceArea:        "San Clemente & South Orange County",
		ServiceTypes:       types,
		DefaultServiceType: DefaultServiceType,
		ResponseWindow:     "within 24 hours",
	}
}

// Load reads a YAML profile from path and layers it over Default. An empty
// path returns the defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("business: read profile: %w", err)
	}

	var override Profile
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("business: parse profile: %w", err)
	}
	p.merge(&override)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyOverrides sets non-empty values on top of the profile. Used for env
// configuration which wins over the profile file.
func (p *Profile) ApplyOverrides(name, phone, siteURL, ownerEmail, fromEmail, fromName string) {
	p.merge(&Profile{
		Name:       name,
		Phone:      phone,
		SiteURL:    siteURL,
		OwnerEmail: ownerEmail,
		FromEmail:  fromEmail,
		FromName:   fromName,
	})
}

func (p *Profile) merge(o *Profile) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&p.Name, o.Name)
	set(&p.OwnerName, o.OwnerName)
	set(&p.Tagline, o.Tagline)
	set(&p.Phone, o.Phone)
	set(&p.SiteURL, o.SiteURL)
	set(&p.OwnerEmail, o.OwnerEmail)
	set(&p.FromEmail, o.FromEmail)
	set(&p.FromName, o.FromName)
	set(&p.ServiceArea, o.ServiceArea)
	set(&p.DefaultServiceType, o.DefaultServiceType)
	set(&p.ResponseWindow, o.ResponseWindow)
	if len(o.ServiceTypes) > 0 {
		p.ServiceTypes = append([]string(nil), o.ServiceTypes...)
	}
}

// Validate checks the profile is usable for intake.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("business: name is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return errors.New("business: phone is required")
	}
	if len(p.ServiceTypes) == 0 {
		return errors.New("business: at least one service type is required")
	}
	if !p.IsServiceType(p.DefaultServiceType) {
		return fmt.Errorf("business: default service type %q is not a listed service type", p.DefaultServiceType)
	}
	return nil
}

// IsServiceType reports whether s is one of the offered service types.
func (p *Profile) IsServiceType(s string) bool {
	for _, t := range p.ServiceTypes {
		if t == s {
			return true
		}
	}
	return false
}

// NormalizeServiceType returns s when it is an offered service type and the
// default otherwise. Unknown values are remapped, never rejected.
func (p *Profile) NormalizeServiceType(s string) string {
	if p.IsServiceType(s) {
		return s
	}
	return p.DefaultServiceType
}

// PhoneDigits returns the phone number reduced to digits for tel: links.
func (p *Profile) PhoneDigits() string {
	var b strings.Builder
	for _, r := range p.Phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DisplayOwner is the name used when addressing the business in copy.
func (p *Profile) DisplayOwner() string {
	if strings.TrimSpace(p.OwnerName) != "" {
		return strings.Fields(p.OwnerName)[0]
	}
	return p.Name
}

// CallUsMessage is appended to every user-facing failure.
func (p *Profile) CallUsMessage() string {
	return fmt.Sprintf("Please call %s directly at %s.", p.DisplayOwner(), p.Phone)
}
