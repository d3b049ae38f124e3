package types

import "time"

type Testimony struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Location      string    `db:"location"`
	TestimonyText string    `db:"testimony_text"`
	IsActive      bool      `db:"is_active"`
	DisplayOrder  int       `db:"display_order"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Initial returns the first letter of the name, used for avatar badges.
func (t *Testimony) Initial() string {
	if t.Name == "" {
		return "T"
	}
	return string([]rune(t.Name)[0:1])
}

type ImageType string

const (
	ImageTypeHero      ImageType = "hero"
	ImageTypeAbout     ImageType = "about"
	ImageTypeCrusade   ImageType = "crusade"
	ImageTypeTestimony ImageType = "testimony"
	ImageTypeGallery   ImageType = "gallery"
)

func (t ImageType) Valid() bool {
	switch t {
	case ImageTypeHero, ImageTypeAbout, ImageTypeCrusade, ImageTypeTestimony, ImageTypeGallery:
		return true
	}
	return false
}

type MinistryImage struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  *string   `db:"description"`
	ImageKey     string    `db:"image_key"`
	ImageType    ImageType `db:"image_type"`
	IsActive     bool      `db:"is_active"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type CrusadeFlyer struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  *string   `db:"description"`
	ImageKey     string    `db:"image_key"`
	IsActive     bool      `db:"is_active"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
}

type NewsletterSignup struct {
	Email        string    `db:"email"`
	IsActive     bool      `db:"is_active"`
	SubscribedAt time.Time `db:"subscribed_at"`
}
