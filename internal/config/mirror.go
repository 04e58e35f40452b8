package config

import "sort"

// Mirror holds the configuration for a single mirror pair: the two tree
// directories plus the link conventions used by the documents in them.
type Mirror struct {
	// Primary is the directory holding the primary document tree.
	Primary string `yaml:"primary"`

	// Secondary is the directory holding the secondary document tree.
	Secondary string `yaml:"secondary"`

	// BaseURL is the site root canonical URLs are composed under.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Segment overrides the default secondary URL path segment.
	Segment string `yaml:"segment,omitempty"`

	// Extension overrides the default document filename extension.
	Extension string `yaml:"extension,omitempty"`

	// PrimaryToken overrides the default primary flag-code value.
	PrimaryToken string `yaml:"primaryToken,omitempty"`

	// SecondaryToken overrides the default secondary flag-code value.
	SecondaryToken string `yaml:"secondaryToken,omitempty"`
}

// File represents the structure of the .mirrorlink configuration file.
type File struct {
	// Mirrors maps mirror pair names to their configurations.
	Mirrors map[string]Mirror `yaml:"mirrors,omitempty"`

	// Defaults contains defaults applied to every mirror pair unless
	// overridden in the pair's own entry.
	Defaults Mirror `yaml:"defaults,omitempty"`
}

// GetMirror returns the configuration for a named mirror pair, with the
// file's defaults merged in. The second return value reports whether the
// pair exists.
func (cf *File) GetMirror(name string) (Mirror, bool) {
	m, ok := cf.Mirrors[name]
	if !ok {
		return Mirror{}, false
	}

	if m.Primary == "" {
		m.Primary = cf.Defaults.Primary
	}
	if m.Secondary == "" {
		m.Secondary = cf.Defaults.Secondary
	}
	if m.BaseURL == "" {
		m.BaseURL = cf.Defaults.BaseURL
	}
	if m.Segment == "" {
		m.Segment = cf.Defaults.Segment
	}
	if m.Extension == "" {
		m.Extension = cf.Defaults.Extension
	}
	if m.PrimaryToken == "" {
		m.PrimaryToken = cf.Defaults.PrimaryToken
	}
	if m.SecondaryToken == "" {
		m.SecondaryToken = cf.Defaults.SecondaryToken
	}
	return m, true
}

// Names returns the configured mirror pair names in sorted order.
// Sorted output keeps batch runs and their reports deterministic.
func (cf *File) Names() []string {
	names := make([]string, 0, len(cf.Mirrors))
	for name := range cf.Mirrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
