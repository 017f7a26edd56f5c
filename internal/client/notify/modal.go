package notify

import "sync"

// ModalState снимок модального окна. Нулевое значение - окно скрыто.
type ModalState struct {
	Title      string
	Message    string
	ActionText string
	Kind       Severity
	Visible    bool
}

// Modal единственное модальное окно статуса. Show заменяет текущее содержимое.
type Modal struct {
	action    func()
	observers observers
	state     ModalState
	mu        sync.Mutex
}

type observers struct {
	fns []func(ModalState)
	mu  sync.Mutex
}

// NewModal создает скрытое окно
func NewModal() *Modal {
	return &Modal{}
}

// Subscribe регистрирует fn на каждое изменение окна
func (m *Modal) Subscribe(fn func(ModalState)) {
	m.observers.mu.Lock()
	m.observers.fns = append(m.observers.fns, fn)
	m.observers.mu.Unlock()
}

// Show показывает окно. action может быть nil.
func (m *Modal) Show(kind Severity, title, message, actionText string, action func()) {
	m.mu.Lock()
	m.state = ModalState{
		Visible:    true,
		Kind:       kind,
		Title:      title,
		Message:    message,
		ActionText: actionText,
	}
	m.action = action
	st := m.state
	m.mu.Unlock()

	m.notify(st)
}

// Hide скрывает окно
func (m *Modal) Hide() {
	m.mu.Lock()
	wasVisible := m.state.Visible
	m.state = ModalState{}
	m.action = nil
	m.mu.Unlock()

	if wasVisible {
		m.notify(ModalState{})
	}
}

// Dismiss закрывает окно пользователем без выполнения действия
func (m *Modal) Dismiss() {
	m.Hide()
}

// Act выполняет действие окна (если есть), затем скрывает его.
// Возвращает false, если окно не было показано.
func (m *Modal) Act() bool {
	m.mu.Lock()
	visible := m.state.Visible
	action := m.action
	m.mu.Unlock()

	if !visible {
		return false
	}
	if action != nil {
		action()
	}
	m.Hide()
	return true
}

// State возвращает текущий снимок
func (m *Modal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Modal) notify(st ModalState) {
	m.observers.mu.Lock()
	fns := append([]func(ModalState){}, m.observers.fns...)
	m.observers.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
