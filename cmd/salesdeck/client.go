package main

import (
	"errors"
	"fmt"

	"github.com/ncanzani/salesdeck/internal/backend"
	"github.com/ncanzani/salesdeck/internal/config"
)

// friendly strips transport/HTTP details down to the message shown to the
// operator.
func friendly(err error) error {
	return errors.New(backend.UserMessage(err))
}

// newConsoleClient builds the backend client from config, with the
// --base-url flag taking precedence. Declared as a var so tests can point it
// at a fixture server.
var newConsoleClient = func() (*backend.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	baseURL := cfg.API.BaseURL
	if baseURLFlag != "" {
		baseURL = baseURLFlag
	}

	return backend.New(baseURL, cfg.API.Timeout()), cfg, nil
}
