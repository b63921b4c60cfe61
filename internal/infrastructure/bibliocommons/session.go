package bibliocommons

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout - элемент не появился за отведённое время, при этом
// контекст вызывающего ещё жив
var ErrWaitTimeout = errors.New("element wait timed out")

// Session - одна вкладка браузера, принадлежащая одной проверке.
// Все методы соблюдают отмену и дедлайн переданного контекста.
type Session interface {
	// Navigate открывает url и ждёт загрузки страницы
	Navigate(ctx context.Context, url string) error

	// WaitVisible ждёт видимого элемента; ErrWaitTimeout по истечении timeout
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitAttached ждёт появления элемента в DOM; ErrWaitTimeout по истечении timeout
	WaitAttached(ctx context.Context, selector string, timeout time.Duration) error

	// AttributeValue возвращает атрибут первого элемента по селектору
	AttributeValue(ctx context.Context, selector, name string) (string, bool, error)

	// InnerHTML возвращает разметку внутри первого элемента по селектору
	InnerHTML(ctx context.Context, selector string) (string, error)

	// ScrollToBottom прокручивает страницу до конца
	ScrollToBottom(ctx context.Context) error

	// ClickButton нажимает первую кнопку, текст которой содержит одну из подписей.
	// false - подходящей кнопки на странице нет.
	ClickButton(ctx context.Context, captions []string) (bool, error)

	// Close закрывает вкладку и освобождает браузер
	Close()
}

// SessionFactory открывает новую изолированную сессию браузера
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}
