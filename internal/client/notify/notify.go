// Package notify показывает пользователю короткие уведомления (toast) и
// модальное окно статуса, а также сводит обработку ошибок в одно место.
package notify

//go:generate moq -out notifier_mock.go . Notifier

// Severity уровень уведомления
type Severity int

const (
	Success Severity = iota
	Error
	Info
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Notifier принимает уведомления для пользователя.
// Реализации не должны блокироваться надолго: вызывается из фоновых задач.
type Notifier interface {
	Notify(severity Severity, title, detail string)
}

// Discard отбрасывает все уведомления
type Discard struct{}

func (Discard) Notify(Severity, string, string) {}
