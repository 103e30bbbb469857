package types

type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// PartnerPreferences is the shape stored in the profile's preferences JSON
// column. Parsed once at the request boundary, never re-parsed downstream.
type PartnerPreferences struct {
	AgeMin     int    `json:"pref_age_min,omitempty"`
	AgeMax     int    `json:"pref_age_max,omitempty"`
	Profession string `json:"pref_profession,omitempty"`
}

// ProfileSummary is the counterpart-facing card used in browse listings and
// connection lists.
type ProfileSummary struct {
	ID              uint   `json:"id"`
	ChildName       string `json:"child_name"`
	ChildAge        int    `json:"child_age"`
	ChildProfession string `json:"child_profession"`
	ChildLocation   string `json:"child_location,omitempty"`
	PrimaryPhotoURL string `json:"primary_photo_url,omitempty"`
}
