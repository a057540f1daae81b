package models

// User — текущий аутентифицированный пользователь админки.
//
// Используется в:
//
//	GET /api/v1/user
//
// Поля:
//   - Email: email пользователя
//   - UUID: стабильный уникальный идентификатор, ключ для настроек
//
// После получения не изменяется, передаётся по значению.
type User struct {
	Email string `json:"email"`
	UUID  string `json:"uuid"`
}

// Valid сообщает, есть ли у пользователя идентификатор.
// Ответ сервера без uuid считается неаутентифицированным.
func (u User) Valid() bool {
	return u.UUID != ""
}

// Preferences — локальные настройки пользователя.
//
// Хранится одна запись на пользователя под ключом "user-<uuid>" в формате:
//
//	{"hideMenu": false}
//
// Новые поля добавляются сюда вместе с аксессором prefs.Key.
type Preferences struct {
	HideMenu bool `json:"hideMenu"`
}

// DefaultPreferences возвращает запись по умолчанию, которая записывается
// при первом обращении к настройкам пользователя.
func DefaultPreferences() Preferences {
	return Preferences{HideMenu: false}
}
