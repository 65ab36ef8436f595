package domain

// Principal is the resolved identity of the calling user, as returned by the
// identity provider. This service never creates or mutates principals; it
// only caches them for the lifetime of the provider session.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarURL,omitempty"`
}
