package user

// LoginForm is posted by the login page.
type LoginForm struct {
	Username string `form:"username" sanitize:"trim" validate:"required"`
	Password string `form:"password" validate:"required,max=64"`
}

// ProfileForm edits the username and role of an account.
type ProfileForm struct {
	Username string `form:"username" sanitize:"strip,trim" validate:"required,max=100"`
	Role     string `form:"role" sanitize:"trim,lower" validate:"required,oneof=root user"`
}

// PasswordForm sets a new password.
type PasswordForm struct {
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm" validate:"eqfield=Password"`
}

// NewUserForm creates an account.
type NewUserForm struct {
	Username        string `form:"username" sanitize:"strip,trim" validate:"required,max=100"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm" validate:"eqfield=Password"`
	Role            string `form:"role" sanitize:"trim,lower" validate:"required,oneof=root user"`
}
