// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/tradewind-io/tradewind/pkg/agents/httpcollect"
	"github.com/tradewind-io/tradewind/pkg/agents/logpublish"
	"github.com/tradewind-io/tradewind/pkg/agents/transform"
	"github.com/tradewind-io/tradewind/pkg/registry"
)

func registerAgentPlugins(reg *registry.Registry, pluginsPath string) {
	agentPlugins, err := reg.LoadAgentPlugins(pluginsPath)
	if err != nil {
		panic(err)
	}

	for _, plugin := range agentPlugins {
		reg.RegisterAgent(plugin)
	}
}

func registerNativeAgents(reg *registry.Registry) {
	reg.RegisterAgent(httpcollect.NewAgentFactory())
	reg.RegisterAgent(transform.NewAgentFactory())
	reg.RegisterAgent(logpublish.NewAgentFactory())
}

// NewRegistry builds the agent registry with native agents plus any .so
// plugins found under pluginsPath. An empty pluginsPath skips plugin loading.
func NewRegistry(log *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(log)

	if pluginsPath != "" {
		registerAgentPlugins(reg, pluginsPath)
	}

	registerNativeAgents(reg)

	return reg
}
