package shortlink

// LinkForm adds or edits a link.
type LinkForm struct {
	Path     string `form:"url_path" sanitize:"trim" validate:"required,max=100,kebab"`
	Redirect string `form:"url_redirect" sanitize:"trim" validate:"required,url"`
}
