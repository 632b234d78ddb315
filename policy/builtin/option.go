package builtin

import (
	"github.com/viant/hamal/extension"
	"github.com/viant/scy"
)

type Option func(b *Builder)

// WithTypes sets payload type registry used by decode policies
func WithTypes(types *extension.Types) Option {
	return func(b *Builder) {
		b.types = types
	}
}

// WithSecrets sets secret service used by secret policies
func WithSecrets(secrets *scy.Service) Option {
	return func(b *Builder) {
		b.secrets = secrets
	}
}
