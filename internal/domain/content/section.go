// Package content defines the site's content sections, their documents and
// the default scaffolds served before anything has been stored.
package content

import (
	"fmt"
	"strings"

	"github.com/glamsite/glamsite/internal/domain"
)

// Section identifies one independently stored area of the site.
type Section string

const (
	SectionHome      Section = "home"
	SectionAbout     Section = "about"
	SectionServices  Section = "services"
	SectionPackages  Section = "packages"
	SectionPortfolio Section = "portfolio"
	SectionContact   Section = "contact"
	SectionSettings  Section = "settings"
)

// Sections lists every known section in display order.
var Sections = []Section{
	SectionHome,
	SectionAbout,
	SectionServices,
	SectionPackages,
	SectionPortfolio,
	SectionContact,
	SectionSettings,
}

// validSections is the lookup set for ParseSection.
var validSections = func() map[Section]bool {
	m := make(map[Section]bool, len(Sections))
	for _, s := range Sections {
		m[s] = true
	}
	return m
}()

// ParseSection canonicalizes raw to lower case and checks it against the
// fixed section set.
func ParseSection(raw string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	if !validSections[s] {
		return "", fmt.Errorf("section %q: %w", raw, domain.ErrNotFound)
	}
	return s, nil
}

// Key returns the blob key under which the section's document is stored.
func Key(s Section) string {
	return "content/" + string(s) + ".json"
}

func (s Section) String() string { return string(s) }
