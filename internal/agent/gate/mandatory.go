package gate

import (
	"context"
	"net/url"
	"sync"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/kvstore"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/agent/session"
	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/models"
)

// DefaultLoginPath — страница входа админки.
const DefaultLoginPath = "/admin/login"

//go:generate mockgen -source=mandatory.go -destination=mocks/mock_navigator.go -package=mocks

// Navigator выполняет полный переход на другой адрес.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc позволяет использовать функцию как Navigator.
type NavigatorFunc func(target string)

// Navigate вызывает f(target).
func (f NavigatorFunc) Navigate(target string) {
	f(target)
}

// Phase — состояние обязательной аутентификации.
type Phase int

const (
	// PhasePending — сессия ещё разрешается, ready=false.
	PhasePending Phase = iota
	// PhaseReady — пользователь есть, ready=true.
	PhaseReady
	// PhaseRedirecting — пользователя нет, выполнен переход на вход. Конечное состояние.
	PhaseRedirecting
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseReady:
		return "ready"
	case PhaseRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// LoginURL возвращает адрес страницы входа с возвратом на next:
//
//	/admin/login?next=%2Fadmin%2Fusers
func LoginURL(loginPath, next string) string {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return loginPath + "?" + url.Values{"next": {next}}.Encode()
}

// MandatoryOption настраивает Mandatory.
type MandatoryOption func(*Mandatory)

// WithLoginPath задаёт путь страницы входа.
func WithLoginPath(path string) MandatoryOption {
	return func(m *Mandatory) {
		if path != "" {
			m.loginPath = path
		}
	}
}

// WithGateOptions передаёт опции во вложенный Gate.
func WithGateOptions(opts ...Option) MandatoryOption {
	return func(m *Mandatory) {
		m.gateOpts = append(m.gateOpts, opts...)
	}
}

// Mandatory — Gate, требующий аутентифицированного пользователя.
//
// Наследники не должны полагаться на User, пока Ready не вернул true.
type Mandatory struct {
	*Gate

	nav         Navigator
	loginPath   string
	currentPath string
	gateOpts    []Option

	mu    sync.RWMutex
	phase Phase
}

// NewMandatory создаёт Mandatory для представления по адресу currentPath.
//
// После разрешения сессии:
//   - пользователь с uuid — PhaseReady;
//   - иначе ровно один вызов nav.Navigate(LoginURL(loginPath, currentPath))
//     и PhaseRedirecting; Ready остаётся false.
//
// Если ctx отменён до ответа, фаза остаётся PhasePending и перехода нет.
//
// Фаза выставляется до закрытия Done, поэтому после Wait она окончательная.
func NewMandatory(
	ctx context.Context,
	cache *session.Cache,
	store kvstore.Store[models.Preferences],
	nav Navigator,
	currentPath string,
	opts ...MandatoryOption,
) *Mandatory {
	m := &Mandatory{
		nav:         nav,
		loginPath:   DefaultLoginPath,
		currentPath: currentPath,
		phase:       PhasePending,
	}
	for _, opt := range opts {
		opt(m)
	}

	gateOpts := append(m.gateOpts, withResolveHook(m.onResolve))
	m.Gate = New(ctx, cache, store, gateOpts...)
	return m
}

func (m *Mandatory) onResolve(u models.User, ok bool) {
	if !ok || !u.Valid() {
		m.setPhase(PhaseRedirecting)
		m.nav.Navigate(LoginURL(m.loginPath, m.currentPath))
		return
	}
	m.setPhase(PhaseReady)
}

func (m *Mandatory) setPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = p
}

// Phase возвращает текущую фазу.
func (m *Mandatory) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.phase
}

// Ready сообщает, что пользователь аутентифицирован и представление можно показывать.
func (m *Mandatory) Ready() bool {
	return m.Phase() == PhaseReady
}

// View — представление с атрибутами, переданными при создании, и
// обязательной аутентификацией.
type View[A any] struct {
	*Mandatory

	Props A
}

// NewView создаёт представление с атрибутами props поверх gate.
func NewView[A any](props A, gate *Mandatory) *View[A] {
	return &View[A]{Mandatory: gate, Props: props}
}
