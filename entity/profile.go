package entity

// Profile is the Telegram data attached to admins and users.
// A nil field means the value could not be resolved.
type Profile struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	ImgURL   *string `json:"imgUrl"`
}

// DisplayName returns the resolved name or fallback when it is unset or empty.
func (p Profile) DisplayName(fallback string) string {
	if p.Name == nil || *p.Name == "" {
		return fallback
	}
	return *p.Name
}
