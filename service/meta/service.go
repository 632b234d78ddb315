package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads YAML or JSON documents through afs
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// URL returns an absolute resource URL
func (s *Service) URL(location string) string {
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Exists returns true if resource exists
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(location), s.options...)
}

// Load loads the resource into dest; ${env.KEY} expressions in YAML scalars are expanded.
// dest can be a *yaml.Node to get the expanded document tree.
func (s *Service) Load(ctx context.Context, location string, dest interface{}) error {
	URL := s.URL(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to download %v: %w", URL, err)
	}
	switch strings.ToLower(path.Ext(url.Path(URL))) {
	case ".json":
		if err = json.Unmarshal([]byte(expandEnvExpr(string(data))), dest); err != nil {
			return fmt.Errorf("failed to decode %v: %w", URL, err)
		}
		return nil
	}
	return s.DecodeYAML(data, dest)
}

// DecodeYAML decodes YAML data into dest with ${env.KEY} expressions expanded
func (s *Service) DecodeYAML(data []byte, dest interface{}) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	expandNode(&node)
	if target, ok := dest.(*yaml.Node); ok {
		*target = node
		return nil
	}
	if node.Kind == 0 {
		return nil
	}
	return node.Decode(dest)
}

func expandNode(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode {
		if strings.Contains(node.Value, "${env.") {
			node.Value = expandEnvExpr(node.Value)
		}
		return
	}
	for _, child := range node.Content {
		expandNode(child)
	}
}

// New creates a meta service
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
