package notify

import (
	"log/slog"
	"sync"

	"github.com/iudanet/stockkeeper/internal/client/iocli"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

// Console выводит уведомления в терминал и дублирует их в лог
type Console struct {
	io     iocli.IO
	logger *slog.Logger
	mu     sync.Mutex
	color  bool
}

// NewConsole создает консольный вывод уведомлений.
// Цвета включаются, только если вывод подключен к терминалу.
func NewConsole(io iocli.IO, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		io:     io,
		logger: logger.With("category", "UI"),
		color:  io.IsTerminal(),
	}
}

func (c *Console) Notify(severity Severity, title, detail string) {
	c.logger.Debug("Notification", "severity", severity.String(), "title", title, "detail", detail)

	c.mu.Lock()
	defer c.mu.Unlock()

	mark := c.mark(severity)
	if detail == "" {
		c.io.Printf("%s %s\n", mark, title)
		return
	}
	c.io.Printf("%s %s: %s\n", mark, title, detail)
}

// ShowModal рендерит модальное окно (подписчик Modal)
func (c *Console) ShowModal(st ModalState) {
	if !st.Visible {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.io.Println("")
	c.io.Printf("%s %s\n", c.mark(st.Kind), st.Title)
	c.io.Printf("    %s\n", st.Message)
	if st.ActionText != "" {
		c.io.Printf("    [%s]\n", st.ActionText)
	}
}

func (c *Console) mark(severity Severity) string {
	var symbol, color string
	switch severity {
	case Success:
		symbol, color = "[ok]", colorGreen
	case Error:
		symbol, color = "[error]", colorRed
	default:
		symbol, color = "[info]", colorBlue
	}
	if !c.color {
		return symbol
	}
	return color + symbol + colorReset
}
