// Package chat wires parser, dispatcher and response generator into the
// single message-handling pipeline used by the HTTP API and the CLI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/kjannette/coinchat/internal/dispatch"
	"github.com/kjannette/coinchat/internal/logging"
	"github.com/kjannette/coinchat/internal/models"
	"github.com/kjannette/coinchat/internal/parser"
	"github.com/kjannette/coinchat/internal/response"
)

var (
	ErrMessageRequired = errors.New("Message is required")
	// ErrServerError marks a reply that is the fixed server-error message.
	ErrServerError = errors.New("server error")
)

// Notifier receives incident reports. notifications.Sender satisfies it.
type Notifier interface {
	Send(msg string)
}

type Service struct {
	parser     *parser.Parser
	dispatcher *dispatch.Dispatcher
	generator  *response.Generator
	notifier   Notifier
}

func NewService(p *parser.Parser, d *dispatch.Dispatcher, g *response.Generator, n Notifier) *Service {
	return &Service{parser: p, dispatcher: d, generator: g, notifier: n}
}

// Handle runs one message through parse, dispatch and generate. Upstream
// failures become ordinary replies. A panic anywhere in the pipeline yields
// the server-error reply together with ErrServerError.
func (s *Service) Handle(ctx context.Context, message, sessionID string) (resp models.BotResponse, err error) {
	if message == "" {
		return models.BotResponse{}, ErrMessageRequired
	}
	log := logging.FromContext(ctx).Component("chat").WithField("session", sessionID)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Errorf("pipeline panic\n%s", debug.Stack())
			s.report(fmt.Sprintf("server error in chat pipeline (session %q): %v", sessionID, r))
			resp = s.generator.ServerError()
			err = ErrServerError
		}
	}()

	parsed := s.parser.Parse(message)
	log.WithFields(map[string]any{
		"intent":     parsed.Intent,
		"coin":       parsed.Coin,
		"confidence": parsed.Confidence,
	}).Infof("parsed intent")

	result, procErr := s.dispatcher.Process(ctx, parsed, sessionID)
	if procErr != nil {
		log.WithError(procErr).Warnf("upstream error")
	}
	return s.generator.Generate(parsed.Intent, result, procErr), nil
}

func (s *Service) report(msg string) {
	if s.notifier != nil {
		s.notifier.Send(msg)
	}
}

// ServerError exposes the generator's fixed failure reply to transports.
func (s *Service) ServerError() models.BotResponse {
	return s.generator.ServerError()
}
