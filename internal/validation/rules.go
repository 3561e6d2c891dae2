package validation

import (
	"strconv"

	"catframe/internal/models"
)

var (
	usernameTag = "required,min=" + strconv.Itoa(UsernameMinLen) + ",max=" + strconv.Itoa(UsernameMaxLen)
	passwordTag = "required,min=" + strconv.Itoa(PasswordMinLen) + "," + bcryptLengthTag
)

// Credentials validates a registration or admin bootstrap payload.
func (val *Validator) Credentials(username, password string) error {
	return val.check([]rule{
		{field: "username", value: username, tag: usernameTag},
		{field: "password", value: password, tag: passwordTag},
	})
}

// ForgotPassword validates the forgot-password payload.
func (val *Validator) ForgotPassword(username string) error {
	return val.check([]rule{
		{field: "username", value: username, tag: "required"},
	})
}

// ResetPassword validates the reset-password payload.
func (val *Validator) ResetPassword(token, newPassword string) error {
	return val.check([]rule{
		{field: "token", value: token, tag: "required"},
		{field: "new_password", value: newPassword, tag: passwordTag},
	})
}

// Movie validates a full movie payload (create and replace). Name is mandatory.
func (val *Validator) Movie(in models.MovieInput) error {
	if in.Name == nil {
		return Errors{{Field: "name", Message: "is required"}}
	}
	return val.check(movieRules(in))
}

// MoviePatch validates a partial movie payload; only present fields are checked.
func (val *Validator) MoviePatch(in models.MovieInput) error {
	return val.check(movieRules(in))
}

func movieRules(in models.MovieInput) []rule {
	var rules []rule
	add := func(field string, present bool, value func() any, tag string) {
		if present {
			rules = append(rules, rule{field: field, value: value(), tag: tag})
		}
	}
	add("name", in.Name != nil, func() any { return *in.Name }, "min=1,max="+strconv.Itoa(MovieNameMaxLen)+","+nonBlankStringTag)
	add("photo", in.Photo != nil, func() any { return *in.Photo }, "http_url")
	add("duration", in.Duration != nil, func() any { return *in.Duration }, "gte=0")
	add("release_year", in.ReleaseYear != nil, func() any { return *in.ReleaseYear }, "gte="+strconv.Itoa(EarliestFilmYear))
	add("banner_url", in.BannerURL != nil, func() any { return *in.BannerURL }, "http_url")
	add("director", in.Director != nil, func() any { return *in.Director }, "max="+strconv.Itoa(DirectorMaxLen))
	add("genre", in.Genre != nil, func() any { return *in.Genre }, "max="+strconv.Itoa(GenreMaxLen))
	return rules
}

// Comment validates comment text.
func (val *Validator) Comment(text string) error {
	return val.check([]rule{
		{field: "text", value: text, tag: "required," + nonBlankStringTag},
	})
}
