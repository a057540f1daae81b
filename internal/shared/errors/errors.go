// Package errors содержит общие доменные ошибки агента и devserver.
//
// Ошибки оборачиваются через fmt.Errorf("%w: ...") и проверяются через errors.Is.
package errors

import "errors"

var (
	// Пользователь не аутентифицирован (нет сессии, сервер вернул ошибку или пустой uuid)
	ErrUnauthenticated = errors.New("not logged in")
	// Операция требует известного пользователя, а его нет
	ErrNoCurrentUser = errors.New("no current user")
	// Входные данные невалидны (пустые поля, неправильный формат и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Неизвестное имя настройки
	ErrUnknownPreference = errors.New("unknown preference")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
)
