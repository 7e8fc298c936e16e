package model

// User is the logged-in user of a session.
type User struct {
	Email string `json:"email"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
}

// SelectionResponse describes the comparison selection.
type SelectionResponse struct {
	Funds      []FundView `json:"funds"`
	Cap        int        `json:"cap"`
	CanCompare bool       `json:"canCompare"`
}

// FavoritesResponse describes the favorites list.
type FavoritesResponse struct {
	Funds        []FavoriteFund `json:"funds"`
	Cap          int            `json:"cap"`
	CanAddMore   bool           `json:"canAddMore"`
	NAVAvailable int            `json:"navAvailable"`
}

// ToggleResponse reports the membership of a fund after a toggle.
type ToggleResponse struct {
	SchemeCode int  `json:"schemeCode"`
	Member     bool `json:"member"`
}
