package model

// AuthSession - удаленная сессия, сохраняемая на устройстве между запусками
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id"`
}

// Profile - строка пользователя в таблице profiles. Пустое имя
// хранится как null.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}
