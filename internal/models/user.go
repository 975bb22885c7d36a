package models

// Profile is the account snapshot returned by GET /users/me/.
// IsActive is the email-verification flag: false means the account exists
// but its address has not completed the confirmation flow.
type Profile struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	DisplayName       string `json:"display_name"`
	PreferredLanguage string `json:"preferred_language"`
	IsActive          bool   `json:"is_active"`
	IsPremium         bool   `json:"is_premium"`
	Avatar            string `json:"avatar,omitempty"`
}

// TokenPair is returned by POST /token/ and POST /token/refresh/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// DownloadHistoryEntry is one row of GET /users/download-history/.
type DownloadHistoryEntry struct {
	DeckName     string `json:"deck_name"`
	WordCount    int    `json:"word_count"`
	DownloadedAt string `json:"downloaded_at"`
}

// LoginForm is the credentials form posted to the login page.
type LoginForm struct {
	Username string `form:"username" json:"username" binding:"required,min=3,max=150"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username string `form:"username" json:"username" binding:"required,alphanum,min=3,max=150"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

// EditProfileForm mirrors the account page's profile editor.
type EditProfileForm struct {
	DisplayName       string `form:"display_name" json:"display_name" binding:"required,min=2,max=50"`
	PreferredLanguage string `form:"preferred_language" json:"preferred_language" binding:"required,oneof=en es fr"`
}

// ChangePasswordForm is submitted to PUT /users/change-password/.
type ChangePasswordForm struct {
	OldPassword string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword string `form:"new_password" json:"new_password" binding:"required,min=8"`
}

// ResendVerificationForm asks the backend to re-send the confirmation email.
type ResendVerificationForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}
