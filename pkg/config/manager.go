package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager handles runtime configuration
type Manager struct {
	mu          sync.RWMutex
	configPath  string
	config      map[string]interface{}
	restartFunc func() error
}

// NewManager creates a new configuration manager
func NewManager(configPath string, restartFunc func() error) (*Manager, error) {
	m := &Manager{
		configPath:  configPath,
		restartFunc: restartFunc,
	}

	// Load initial configuration
	if err := m.loadConfig(); err != nil {
		return nil, err
	}

	return m, nil
}

// loadConfig loads configuration from file
func (m *Manager) loadConfig() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()

	return nil
}

// saveConfig saves configuration to file
func (m *Manager) saveConfig() error {
	m.mu.RLock()
	data, err := yaml.Marshal(m.config)
	m.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to temp file first
	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	// Rename to actual file (atomic operation)
	if err := os.Rename(tmpFile, m.configPath); err != nil {
		return fmt.Errorf("failed to update config file: %w", err)
	}

	return nil
}

// GetConfig returns the entire configuration
func (m *Manager) GetConfig() (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Deep copy to prevent external modifications
	return deepCopy(m.config), nil
}

// UpdateConfig updates configuration with provided values
func (m *Manager) UpdateConfig(updates map[string]interface{}) error {
	m.mu.Lock()
	// Merge updates into config
	for key, value := range updates {
		m.config[key] = value
	}
	m.mu.Unlock()

	// Save to file
	return m.saveConfig()
}

// RestartService restarts the service
func (m *Manager) RestartService() error {
	if m.restartFunc != nil {
		return m.restartFunc()
	}
	return fmt.Errorf("restart function not configured")
}

// Reload reloads configuration from file
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Helper: Deep copy map
func deepCopy(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{})
	for k, v := range src {
		switch v := v.(type) {
		case map[string]interface{}:
			dst[k] = deepCopy(v)
		case []interface{}:
			dst[k] = deepCopySlice(v)
		default:
			dst[k] = v
		}
	}
	return dst
}

// Helper: Deep copy slice
func deepCopySlice(src []interface{}) []interface{} {
	dst := make([]interface{}, len(src))
	for i, v := range src {
		switch v := v.(type) {
		case map[string]interface{}:
			dst[i] = deepCopy(v)
		case []interface{}:
			dst[i] = deepCopySlice(v)
		default:
			dst[i] = v
		}
	}
	return dst
}
