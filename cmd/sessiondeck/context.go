package main

import (
	"strings"
	"sync"

	"github.com/five82/sessiondeck/internal/config"
)

type commandContext struct {
	configFlag *string
	envFlag    *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, envFlag: envFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// environment returns the --env override, or empty for the configured one.
func (c *commandContext) environment() string {
	if c.envFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.envFlag)
}
