package engine

import (
	"context"

	"mdclip/pkg/errors"
)

// Native calls the converter directly in-process. It is always ready.
type Native struct {
	t *translator
}

func NewNative() (*Native, error) {
	rules, err := LoadRules(Assets, RulesPath)
	if err != nil {
		return nil, err
	}
	return &Native{t: newTranslator(rules)}, nil
}

func (n *Native) Ready() bool { return true }

func (n *Native) Convert(_ context.Context, html string) (string, error) {
	markdown, err := n.t.translate(html)
	if err != nil {
		return "", errors.ConversionFailedWithError(err)
	}
	return markdown, nil
}

func (n *Native) Wait(context.Context) error { return nil }

func (n *Native) Close() error { return nil }
