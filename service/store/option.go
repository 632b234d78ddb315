package store

// Option represents store option
type Option func(s *Store)

// WithMiddlewares appends middlewares, the first one sees an action first
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(s *Store) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}
