package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampRating(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"4", 4},
		{"4.7", 4},
		{"9", 5},
		{"-3", 1},
		{"0.5", 1},
		{"0", 5},
		{"", 5},
		{"cinco", 5},
		{" 2 ", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampRating(tt.raw), "raw %q", tt.raw)
	}
}

func TestLayoutContainerClass(t *testing.T) {
	assert.Equal(t, "px-4 max-w-5xl", LayoutCompact.ContainerClass())
	assert.Equal(t, "px-6 max-w-7xl", LayoutWide.ContainerClass())
	assert.Equal(t, "px-5 max-w-6xl", LayoutDefault.ContainerClass())
	assert.Equal(t, "px-5 max-w-6xl", Layout("other").ContainerClass())
}

func TestWithDefaults_EmptyDocument(t *testing.T) {
	assert.Equal(t, DefaultSiteData(), SiteData{}.WithDefaults())
}

func TestWithDefaults_KeepsPresentFields(t *testing.T) {
	d := SiteData{
		GalleryImages:   []GalleryImage{},
		EditableContent: map[string]string{SlotHeroTitle: "Olá"},
		Theme:           "neon",
		Layout:          LayoutCompact,
	}

	out := d.WithDefaults()

	assert.Empty(t, out.GalleryImages)
	assert.NotNil(t, out.GalleryImages)
	assert.Equal(t, "Olá", out.Text(SlotHeroTitle))
	assert.Equal(t, DefaultSiteData().Text(SlotAbout), out.Text(SlotAbout))
	assert.Equal(t, ThemeLight, out.Theme)
	assert.Equal(t, LayoutCompact, out.Layout)
	// the input map is not touched
	assert.Len(t, d.EditableContent, 1)
}

func TestCloneIsDeep(t *testing.T) {
	d := DefaultSiteData()
	c := d.Clone()
	c.Services[0].Title = "x"
	c.EditableContent[SlotAbout] = "x"
	c.SocialLinks.Instagram = "x"

	assert.NotEqual(t, "x", d.Services[0].Title)
	assert.NotEqual(t, "x", d.Text(SlotAbout))
	assert.NotEqual(t, "x", d.SocialLinks.Instagram)
}

func TestTestimonialSetField(t *testing.T) {
	tm := Testimonial{ID: 1, Rating: 5}

	assert.NoError(t, tm.SetField("rating", "2"))
	assert.Equal(t, 2, tm.Rating)
	assert.Len(t, tm.Stars(), 2)
	assert.ErrorIs(t, tm.SetField("stars", "3"), ErrUnknownField)
}

func TestDentistPresentation(t *testing.T) {
	d := Dentist{
		Specialty:   "Odontopediatria — CRO 125483",
		Description: "Atende crianças.\nFormação: USP\n\n",
	}

	assert.Equal(t, "Odontopediatria", d.SpecialtyName())
	assert.Equal(t, "CRO 125483", d.Registration())
	assert.Equal(t, []DescriptionLine{
		{Text: "Atende crianças."},
		{Label: "Formação", Text: "USP"},
	}, d.DescriptionLines())

	plain := Dentist{Specialty: "Ortodontia"}
	assert.Equal(t, "Ortodontia", plain.SpecialtyName())
	assert.Empty(t, plain.Registration())
}
