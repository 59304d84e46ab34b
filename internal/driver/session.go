package driver

import (
	"context"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Session é uma sessão de navegador de posse exclusiva de um chamador
// entre Acquire e Release
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Navigate carrega a URL e aguarda o corpo da página ficar pronto,
// dentro do tempo limite informado
func (s *Session) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitVisible aguarda um elemento ficar visível na página atual.
// Um tempo limite esgotado não é fatal: a página pode simplesmente não
// ter o elemento (produto sem tamanhos, por exemplo).
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// HTML retorna o HTML renderizado da página atual
func (s *Session) HTML(timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// ScrollToBottom rola a página até o fim para disparar carregamento dinâmico
func (s *Session) ScrollToBottom(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(time.Second),
	)
}

func (s *Session) dispose() {
	if s.cancel != nil {
		s.cancel()
	}
}

// browserBinaries são os executáveis procurados por EnvironmentReady,
// na mesma ordem de preferência do chromedp
var browserBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// EnvironmentReady verifica se há um navegador utilizável no PATH
func EnvironmentReady() bool {
	for _, bin := range browserBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			return true
		}
	}
	return false
}
