package content

// scaffolds holds the empty document shape for every section. Keep in sync
// with Sections.
var scaffolds = map[Section]string{
	SectionHome:      `{"hero":{"eyebrow":"","title":"","subtitle":"","slides":[]},"highlights":[]}`,
	SectionServices:  `{"hero":{"title":"","subtitle":""},"services":[]}`,
	SectionPackages:  `{"packages":[]}`,
	SectionAbout:     `{"about":{"title":"","tagline":"","bio":"","travelNote":"","image":"","imageAlt":""},"locations":[],"training":[]}`,
	SectionPortfolio: `{"items":[]}`,
	SectionContact:   `{"phone":"","whatsapp":"","whatsappLink":"","email":"","social":{"instagram":"","facebook":""},"ctaLabel":"","ctaLink":"","address":{"lines":[]},"travelNote":""}`,
	// settings is deliberately coarse: only the three top-level groups.
	SectionSettings: `{"admin":{},"profile":{},"general":{}}`,
}

// Scaffold returns a fresh copy of the default document for s.
// Unknown sections get an empty object.
func Scaffold(s Section) Document {
	raw, ok := scaffolds[s]
	if !ok {
		return Document(`{}`)
	}
	return Document(raw)
}
