// Package registry manages agent factories and validates stage configuration.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"strings"

	"github.com/tradewind-io/tradewind/pkg/protocol"
)

type Registry struct {
	logger         *slog.Logger
	agentFactories map[string]protocol.AgentFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:         log,
		agentFactories: make(map[string]protocol.AgentFactory),
	}
}

func (r *Registry) RegisterAgent(agentFactory protocol.AgentFactory) {
	r.agentFactories[agentFactory.ID()] = agentFactory
}

// CreateAgent instantiates an agent for the given type after validating the
// config against the factory's schema.
func (r *Registry) CreateAgent(agentType string, config map[string]any) (protocol.Agent, error) {
	factory, ok := r.agentFactories[agentType]
	if !ok {
		return nil, fmt.Errorf("agent type '%s' not registered", agentType)
	}

	err := validateConfigSchema(factory.Schema(), config)
	if err != nil {
		return nil, fmt.Errorf("invalid config for agent type '%s': %w", agentType, err)
	}

	return factory.Create(config)
}

// AvailableAgents returns all registered agent type identifiers.
func (r *Registry) AvailableAgents() []string {
	types := make([]string, 0, len(r.agentFactories))
	for agentType := range r.agentFactories {
		types = append(types, agentType)
	}

	return types
}

// LoadAgentPlugins loads agent factories from .so plugins under pluginsPath.
func (r *Registry) LoadAgentPlugins(pluginsPath string) ([]protocol.AgentFactory, error) {
	return loadPlugin[protocol.AgentFactory](r.logger, pluginsPath, "Agent")
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/" + strings.ToLower(symbolName) + "s"
	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup symbol %s in plugin %s: %w", symbolName, p, err)
		}

		castV, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("plugin %s does not implement the expected %s interface", p, symbolName)
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded agent plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
