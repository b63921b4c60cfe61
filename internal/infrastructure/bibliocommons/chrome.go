package bibliocommons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/library-availability/internal/config"
)

// Browser запускает отдельный headless Chrome на каждую сессию
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
}

// NewBrowser создает фабрику сессий поверх chromedp
func NewBrowser(cfg *config.BrowserConfig, logger *zap.Logger) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 2000),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx: allocCtx,
		cancel:   cancel,
		logger:   logger,
	}
}

// NewSession запускает браузер и открывает в нём вкладку
func (b *Browser) NewSession(ctx context.Context) (Session, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(b.logger.Sugar().Debugf),
	)

	// Браузер живёт столько же, сколько контекст первого Run: только tabCtx
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx)
	if !stop() && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &chromeSession{tab: tabCtx, cancel: cancel}, nil
}

// Close останавливает аллокатор и все оставшиеся процессы браузера
func (b *Browser) Close() {
	b.cancel()
}

type chromeSession struct {
	tab    context.Context
	cancel context.CancelFunc
}

// run выполняет действия во вкладке в пределах ctx вызывающего.
// Браузер уже выделен в NewSession, так что отмена дочернего контекста
// прерывает только текущие действия. timeout > 0 ограничивает именно это ожидание и превращается в ErrWaitTimeout.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if timeout > 0 {
		var cancelWait context.CancelFunc
		runCtx, cancelWait = context.WithTimeout(runCtx, timeout)
		defer cancelWait()
	}

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return ErrWaitTimeout
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, 0, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) WaitAttached(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *chromeSession) AttributeValue(ctx context.Context, selector, name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.run(ctx, 0, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery))
	return value, ok, err
}

func (s *chromeSession) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := s.run(ctx, 0, chromedp.InnerHTML(selector, &html, chromedp.ByQuery))
	return html, err
}

func (s *chromeSession) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, 0, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (s *chromeSession) ClickButton(ctx context.Context, captions []string) (bool, error) {
	for _, caption := range captions {
		var nodes []*cdp.Node
		xpath := fmt.Sprintf(`//button[contains(normalize-space(.), %q)]`, strings.ReplaceAll(caption, `"`, ""))
		if err := s.run(ctx, 0, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
			return false, err
		}
		if len(nodes) == 0 {
			continue
		}
		if err := s.run(ctx, 0, chromedp.MouseClickNode(nodes[0])); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *chromeSession) Close() {
	s.cancel()
}
