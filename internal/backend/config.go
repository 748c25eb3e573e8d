package backend

import (
	"errors"
	"fmt"

	"homebudget/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	c := Config{
		Type:         Type(appConfig.Backend),
		DBPath:       appConfig.DBPath,
		NewDB:        appConfig.NewDB,
		AMQPURL:      appConfig.AMQP.URL,
		AMQPExchange: appConfig.AMQP.Exchange,
		AMQPQueue:    appConfig.AMQP.Queue,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q (valid: %v)", c.Type, TypeStrings())
	}
	if c.Type == SQLite && c.DBPath == "" {
		return errors.New("database path is required for sqlite backend")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return errors.New("amqp exchange and queue are required when amqp url is set")
	}
	return nil
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SQLite, Memory}
}

func TypeStrings() []string {
	types := Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
