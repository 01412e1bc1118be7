package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DocumentCollection and DocumentID locate the single site document.
const (
	DocumentCollection = "siteContent"
	DocumentID         = "main"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemePastel Theme = "pastel"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemePastel:
		return true
	}
	return false
}

type Layout string

const (
	LayoutDefault Layout = "default"
	LayoutCompact Layout = "compact"
	LayoutWide    Layout = "wide"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutDefault, LayoutCompact, LayoutWide:
		return true
	}
	return false
}

// ContainerClass is the CSS class set used by every section container.
func (l Layout) ContainerClass() string {
	switch l {
	case LayoutCompact:
		return "px-4 max-w-5xl"
	case LayoutWide:
		return "px-6 max-w-7xl"
	}
	return "px-5 max-w-6xl"
}

var ErrUnknownField = errors.New("unknown field")

// Record is implemented by every item stored in a site collection.
type Record interface {
	RecordID() int64
}

type Dentist struct {
	ID          int64  `json:"id" firestore:"id"`
	Initials    string `json:"initials" firestore:"initials"`
	Name        string `json:"name" firestore:"name"`
	Specialty   string `json:"specialty" firestore:"specialty"`
	Description string `json:"description" firestore:"description"`
	Avatar      string `json:"avatar,omitempty" firestore:"avatar,omitempty"`
}

func (d Dentist) RecordID() int64 { return d.ID }

func (d *Dentist) SetField(field, value string) error {
	switch field {
	case "initials":
		d.Initials = value
	case "name":
		d.Name = value
	case "specialty":
		d.Specialty = value
	case "description":
		d.Description = value
	case "avatar":
		d.Avatar = value
	default:
		return ErrUnknownField
	}
	return nil
}

// SpecialtyName and Registration split "Odontopediatria — CRO 125483".
func (d Dentist) SpecialtyName() string {
	name, _, _ := strings.Cut(d.Specialty, "—")
	return strings.TrimSpace(name)
}

func (d Dentist) Registration() string {
	_, reg, _ := strings.Cut(d.Specialty, "—")
	return strings.TrimSpace(reg)
}

// DescriptionLine is one line of a dentist description; "Label: text"
// lines get a bold label.
type DescriptionLine struct {
	Label string
	Text  string
}

func (d Dentist) DescriptionLines() []DescriptionLine {
	var lines []DescriptionLine
	for _, line := range strings.Split(d.Description, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if label, text, ok := strings.Cut(line, ":"); ok {
			lines = append(lines, DescriptionLine{Label: label, Text: strings.TrimSpace(text)})
			continue
		}
		lines = append(lines, DescriptionLine{Text: line})
	}
	return lines
}

type Service struct {
	ID          int64  `json:"id" firestore:"id"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
}

func (s Service) RecordID() int64 { return s.ID }

func (s *Service) SetField(field, value string) error {
	switch field {
	case "title":
		s.Title = value
	case "description":
		s.Description = value
	default:
		return ErrUnknownField
	}
	return nil
}

type Testimonial struct {
	ID     int64  `json:"id" firestore:"id"`
	Quote  string `json:"quote" firestore:"quote"`
	Author string `json:"author" firestore:"author"`
	Rating int    `json:"rating" firestore:"rating"`
	Avatar string `json:"avatar,omitempty" firestore:"avatar,omitempty"`
}

func (t Testimonial) RecordID() int64 { return t.ID }

func (t *Testimonial) SetField(field, value string) error {
	switch field {
	case "quote":
		t.Quote = value
	case "author":
		t.Author = value
	case "rating":
		t.Rating = ClampRating(value)
	case "avatar":
		t.Avatar = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Stars returns the rating as a slice so templates can range over it.
func (t Testimonial) Stars() []struct{} {
	r := t.Rating
	if r < 1 || r > 5 {
		r = 5
	}
	return make([]struct{}, r)
}

type GalleryImage struct {
	ID      int64  `json:"id" firestore:"id"`
	Src     string `json:"src" firestore:"src"`
	Caption string `json:"caption" firestore:"caption"`
}

func (g GalleryImage) RecordID() int64 { return g.ID }

func (g *GalleryImage) SetField(field, value string) error {
	switch field {
	case "src":
		g.Src = value
	case "caption":
		g.Caption = value
	default:
		return ErrUnknownField
	}
	return nil
}

type SocialLinks struct {
	Instagram string `json:"instagram" firestore:"instagram"`
	Facebook  string `json:"facebook" firestore:"facebook"`
}

// SiteData is the whole mutable state of the site, stored as one document.
type SiteData struct {
	Dentists          []Dentist         `json:"dentists" firestore:"dentists"`
	Services          []Service         `json:"services" firestore:"services"`
	Testimonials      []Testimonial     `json:"testimonials" firestore:"testimonials"`
	GalleryImages     []GalleryImage    `json:"galleryImages" firestore:"galleryImages"`
	HeroImage         string            `json:"heroImage" firestore:"heroImage"`
	EditableContent   map[string]string `json:"editableContent" firestore:"editableContent"`
	SocialLinks       *SocialLinks      `json:"socialLinks" firestore:"socialLinks"`
	Theme             Theme             `json:"theme" firestore:"theme"`
	Layout            Layout            `json:"layout" firestore:"layout"`
	PrimaryColor      string            `json:"primaryColor" firestore:"primaryColor"`
	HeroTitleFontSize int               `json:"heroTitleFontSize" firestore:"heroTitleFontSize"`
}

// Text returns the editable content of a slot.
func (d SiteData) Text(slot string) string {
	return d.EditableContent[slot]
}

// Clone returns a deep copy so callers can mutate it freely.
func (d SiteData) Clone() SiteData {
	c := d
	c.Dentists = cloneSlice(d.Dentists)
	c.Services = cloneSlice(d.Services)
	c.Testimonials = cloneSlice(d.Testimonials)
	c.GalleryImages = cloneSlice(d.GalleryImages)
	if d.EditableContent != nil {
		c.EditableContent = make(map[string]string, len(d.EditableContent))
		for k, v := range d.EditableContent {
			c.EditableContent[k] = v
		}
	}
	if d.SocialLinks != nil {
		links := *d.SocialLinks
		c.SocialLinks = &links
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// WithDefaults substitutes the built-in default for every missing field.
// A nil collection is missing; an empty one is kept as is.
func (d SiteData) WithDefaults() SiteData {
	def := DefaultSiteData()
	out := d.Clone()
	if d.Dentists == nil {
		out.Dentists = def.Dentists
	}
	if d.Services == nil {
		out.Services = def.Services
	}
	if d.Testimonials == nil {
		out.Testimonials = def.Testimonials
	}
	if d.GalleryImages == nil {
		out.GalleryImages = def.GalleryImages
	}
	if out.HeroImage == "" {
		out.HeroImage = def.HeroImage
	}
	if out.EditableContent == nil {
		out.EditableContent = def.EditableContent
	} else {
		for slot, text := range def.EditableContent {
			if _, ok := out.EditableContent[slot]; !ok {
				out.EditableContent[slot] = text
			}
		}
	}
	if out.SocialLinks == nil {
		out.SocialLinks = def.SocialLinks
	}
	if !out.Theme.Valid() {
		out.Theme = def.Theme
	}
	if !out.Layout.Valid() {
		out.Layout = def.Layout
	}
	if out.PrimaryColor == "" {
		out.PrimaryColor = def.PrimaryColor
	}
	if out.HeroTitleFontSize <= 0 {
		out.HeroTitleFontSize = def.HeroTitleFontSize
	}
	return out
}

// ClampRating parses a testimonial rating and clamps it into [1,5].
// Anything that is not a number, or is zero, becomes 5.
func ClampRating(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f == 0 || math.IsNaN(f) {
		return 5
	}
	if f < 1 {
		return 1
	}
	if f > 5 {
		return 5
	}
	return int(f)
}
