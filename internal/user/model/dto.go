package model

// UpsertProfileRequest is the body of PUT /users/me.
type UpsertProfileRequest struct {
	Name            string `json:"name"              binding:"required,max=255"`
	Email           string `json:"email"             binding:"omitempty,email,max=255"`
	University      string `json:"university"        binding:"max=255"`
	Grade           string `json:"grade"             binding:"max=64"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,url,max=2048"`
}

// ProfileResponse wraps a user profile.
type ProfileResponse struct {
	User *User `json:"user"`
}
