package policy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/service/meta"
)

// Declarations represents a policy declaration document
type Declarations struct {
	Policies []*policy.Config `json:"policies" yaml:"policies"`
}

// Service loads policy declarations
type Service struct {
	metaService *meta.Service
}

// DecodeYAML decodes policy declarations from YAML
func (s *Service) DecodeYAML(encoded []byte) ([]*policy.Config, error) {
	declarations := &Declarations{}
	if err := s.metaService.DecodeYAML(encoded, declarations); err != nil {
		return nil, err
	}
	return s.validate("", declarations)
}

// Load loads policy declarations from YAML at the specified URL
func (s *Service) Load(ctx context.Context, URL string) ([]*policy.Config, error) {
	if ext := filepath.Ext(URL); ext == "" {
		URL += ".yaml"
	}
	declarations := &Declarations{}
	if err := s.metaService.Load(ctx, URL, declarations); err != nil {
		return nil, fmt.Errorf("failed to load policies from %s: %w", URL, err)
	}
	return s.validate(URL, declarations)
}

func (s *Service) validate(URL string, declarations *Declarations) ([]*policy.Config, error) {
	for i, config := range declarations.Policies {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid policy declaration %v[%d]: %w", URL, i, err)
		}
	}
	return declarations.Policies, nil
}

// New creates a policy declaration service
func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.metaService == nil {
		ret.metaService = meta.New(afs.New(), "")
	}
	return ret
}
