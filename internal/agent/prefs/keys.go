package prefs

import (
	"fmt"
	"sort"
	"strconv"

	serr "github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// Key — типизированный аксессор одного поля models.Preferences.
type Key[T any] struct {
	name  string
	get   func(models.Preferences) T
	set   func(*models.Preferences, T)
	parse func(string) (T, error)
}

// Name возвращает имя поля в JSON записи.
func (k Key[T]) Name() string {
	return k.name
}

func (k Key[T]) value(p models.Preferences) any {
	return k.get(p)
}

func (k Key[T]) parseInto(p *models.Preferences, raw string) error {
	v, err := k.parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", serr.ErrInvalidInput, k.name, raw, err)
	}
	k.set(p, v)
	return nil
}

// Field — нетипизированный доступ к настройке по имени (для CLI).
type Field interface {
	Name() string
	value(models.Preferences) any
	parseInto(*models.Preferences, string) error
}

// HideMenu — скрывать ли боковое меню.
var HideMenu = Key[bool]{
	name:  "hideMenu",
	get:   func(p models.Preferences) bool { return p.HideMenu },
	set:   func(p *models.Preferences, v bool) { p.HideMenu = v },
	parse: strconv.ParseBool,
}

var fields = map[string]Field{
	HideMenu.Name(): HideMenu,
}

// Lookup возвращает настройку по имени.
func Lookup(name string) (Field, bool) {
	f, ok := fields[name]
	return f, ok
}

// Names возвращает имена всех настроек по алфавиту.
func Names() []string {
	out := make([]string, 0, len(fields))
	for name := range fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func unknown(name string) error {
	return fmt.Errorf("%w: %q", serr.ErrUnknownPreference, name)
}
