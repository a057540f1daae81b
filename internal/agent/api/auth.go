// В этом файле описаны методы клиента для работы с сессией:
// получение текущего пользователя и выход.
package api

import (
	"context"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// UserResponse описывает ответ сервера с текущим пользователем.
//
// Пустой UUID означает, что сессии нет.
type UserResponse struct {
	Email string `json:"email"`
	UUID  string `json:"uuid"`
}

// CurrentUser запрашивает текущего пользователя.
//
// Метод отправляет GET запрос на userPath (по умолчанию /api/v1/user).
// Проверка uuid — задача вызывающего кода (session.Cache).
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var resp UserResponse
	if err := c.GetJSON(ctx, c.userPath, &resp); err != nil {
		return models.User{}, err
	}
	return models.User{Email: resp.Email, UUID: resp.UUID}, nil
}

// Logout завершает сессию на сервере.
//
// Метод отправляет GET запрос на logoutPath (по умолчанию /api/v1/logout),
// тело ответа игнорируется.
func (c *Client) Logout(ctx context.Context) error {
	return c.GetJSON(ctx, c.logoutPath, nil)
}
