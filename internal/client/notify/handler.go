package notify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/stockkeeper/internal/client/api"
)

// ErrorHandler единая точка обработки ошибок: лог с категорией + уведомление
type ErrorHandler struct {
	notifier Notifier
	modal    *Modal
	logger   *slog.Logger
}

// NewErrorHandler создает обработчик ошибок
func NewErrorHandler(notifier Notifier, modal *Modal, logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = Discard{}
	}
	if modal == nil {
		modal = NewModal()
	}
	return &ErrorHandler{notifier: notifier, modal: modal, logger: logger}
}

// HandleAPIError логирует ошибку сервера и показывает "Server Connection Error".
// Возвращает показанное сообщение.
func (h *ErrorHandler) HandleAPIError(err error, customMessage string) string {
	message := customMessage
	if message == "" {
		message = ErrorMessage(err)
	}

	h.logger.Error("API Error: "+message, "category", "SERVER", "error", err)
	h.notifier.Notify(Error, "Server Connection Error", message)

	return message
}

// HandleStorageError логирует ошибку локального хранилища без уведомления
func (h *ErrorHandler) HandleStorageError(err error, operation string) string {
	message := fmt.Sprintf("Failed to %s: %v", operation, err)
	h.logger.Error(message, "category", "DB", "error", err)
	return message
}

// HandleError общая обработка ошибки
func (h *ErrorHandler) HandleError(err error, category string) {
	message := "An unknown error occurred"
	if err != nil {
		message = err.Error()
	}
	if category == "" {
		category = "APP"
	}

	h.logger.Error(message, "category", category, "error", err)
	h.notifier.Notify(Error, "Error", message)
}

// HandleCriticalError показывает модальное окно ошибки с действием "Retry"
func (h *ErrorHandler) HandleCriticalError(title string, err error, onRetry func()) {
	message := "A critical error occurred."
	if err != nil {
		message = err.Error()
	}

	h.logger.Error("CRITICAL: "+message, "category", "APP", "error", err)
	h.modal.Show(Error, title, message, "Retry", onRetry)
}

// Warn пишет предупреждение в лог
func (h *ErrorHandler) Warn(message, category string) {
	if category == "" {
		category = "APP"
	}
	h.logger.Warn(message, "category", category)
}

// ErrorMessage возвращает текст ошибки для показа пользователю
func ErrorMessage(err error) string {
	var apiErr *api.Error
	switch {
	case err == nil:
		return "An unexpected server error occurred"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, api.ErrUnreachable):
		return "Check your internet connection"
	default:
		return err.Error()
	}
}
