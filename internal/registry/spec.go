package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// specAliases are the recognized top-level keys holding the client spec
// array, in priority order. The first alias that is present and holds a
// sequence wins; aliases are never merged.
var specAliases = []string{"dbs", "db_clients", "databases"}

const (
	// DefaultClientName is both the fallback for unnamed entries and the
	// name that always wins default-client resolution.
	DefaultClientName = "default"

	defaultSSLMode  = "require"
	defaultPoolSize = 1

	enginePostgres = "postgresql"
)

// ClientSpec is one database client entry from the spec file.
type ClientSpec struct {
	Name           string `yaml:"name"`
	Engine         string `yaml:"rdbms"`
	ConnectionInfo string `yaml:"connection_info"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	DBName         string `yaml:"dbname"`
	User           string `yaml:"user"`
	Password       string `yaml:"passwd"`
	SSLMode        string `yaml:"sslmode"`

	// Pool size may appear under either key; ConnectionNumber wins when
	// both are set.
	ConnectionNumber    int `yaml:"connection_number"`
	NumberOfConnections int `yaml:"number_of_connections"`
}

func (s *ClientSpec) normalize() {
	if s.Name == "" {
		s.Name = DefaultClientName
	}
	if s.SSLMode == "" {
		s.SSLMode = defaultSSLMode
	}
}

func (s *ClientSpec) validate() error {
	if s.Engine != enginePostgres {
		return fmt.Errorf("unsupported rdbms %q (only %q is supported)", s.Engine, enginePostgres)
	}
	if s.ConnectionInfo != "" {
		return nil
	}
	var missing []string
	if s.Host == "" {
		missing = append(missing, "host")
	}
	if s.Port == 0 {
		missing = append(missing, "port")
	}
	if s.DBName == "" {
		missing = append(missing, "dbname")
	}
	if s.User == "" {
		missing = append(missing, "user")
	}
	if s.Password == "" {
		missing = append(missing, "passwd")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing connection fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// connString returns the DSN: either the precomposed descriptor verbatim or
// one assembled from the discrete fields.
func (s *ClientSpec) connString() string {
	if s.ConnectionInfo != "" {
		return s.ConnectionInfo
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=10",
		s.Host, s.Port, s.DBName, s.User, s.Password, s.SSLMode)
}

func (s *ClientSpec) poolSize() int32 {
	if s.ConnectionNumber > 0 {
		return int32(s.ConnectionNumber)
	}
	if s.NumberOfConnections > 0 {
		return int32(s.NumberOfConnections)
	}
	return defaultPoolSize
}

// loadSpecs parses the spec file (YAML, of which JSON is a subset) and
// extracts the client array from the first matching alias.
func loadSpecs(path string) ([]ClientSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for _, alias := range specAliases {
		node, ok := doc[alias]
		if !ok || node.Kind != yaml.SequenceNode {
			continue
		}
		var specs []ClientSpec
		if err := node.Decode(&specs); err != nil {
			return nil, fmt.Errorf("failed to decode %q entries: %w", alias, err)
		}
		return specs, nil
	}

	return nil, fmt.Errorf("config file %s has no client list under any of: %s",
		path, strings.Join(specAliases, ", "))
}
