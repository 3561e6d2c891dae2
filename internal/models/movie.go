package models

// Movie is a catalog entry. Optional columns are nil when unset.
type Movie struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Photo       *string `json:"photo"`
	Duration    *int    `json:"duration"`     // minutes
	ReleaseYear *int    `json:"release_year"` // >= 1888
	Description *string `json:"description"`
	BannerURL   *string `json:"banner_url"`
	Director    *string `json:"director"`
	Genre       *string `json:"genre"`
}

// MovieInput carries the writable fields of a movie. For PATCH only non-nil fields apply.
type MovieInput struct {
	Name        *string `json:"name"`
	Photo       *string `json:"photo"`
	Duration    *int    `json:"duration"`
	ReleaseYear *int    `json:"release_year"`
	Description *string `json:"description"`
	BannerURL   *string `json:"banner_url"`
	Director    *string `json:"director"`
	Genre       *string `json:"genre"`
}

// ApplyTo copies every non-nil field of in onto m.
func (in MovieInput) ApplyTo(m *Movie) {
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Photo != nil {
		m.Photo = in.Photo
	}
	if in.Duration != nil {
		m.Duration = in.Duration
	}
	if in.ReleaseYear != nil {
		m.ReleaseYear = in.ReleaseYear
	}
	if in.Description != nil {
		m.Description = in.Description
	}
	if in.BannerURL != nil {
		m.BannerURL = in.BannerURL
	}
	if in.Director != nil {
		m.Director = in.Director
	}
	if in.Genre != nil {
		m.Genre = in.Genre
	}
}

// Movie builds a full record from the input, used by create and replace.
func (in MovieInput) Movie(id int64) Movie {
	m := Movie{ID: id}
	in.ApplyTo(&m)
	return m
}
