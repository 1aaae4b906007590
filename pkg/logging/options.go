// pkg/logging/options.go
package logging

// DefaultBasePath is the directory log files go to when none is configured.
const DefaultBasePath = "./"

// Options is the complete pipeline configuration. It is treated as immutable
// once handed to Manager.Configure; reconfiguring replaces it wholesale.
type Options struct {
	Hook    Hook
	Console ConsoleOptions
	File    FileOptions
}

// DefaultOptions returns the configuration active before the first
// Configure call: identity hook, both sinks disabled, base path "./".
func DefaultOptions() Options {
	return Options{
		Hook: IdentityHook,
		File: FileOptions{BasePath: DefaultBasePath},
	}
}

// withDefaults fills in the zero values that have a documented default.
func (o Options) withDefaults() Options {
	if o.Hook == nil {
		o.Hook = IdentityHook
	}
	if o.File.BasePath == "" {
		o.File.BasePath = DefaultBasePath
	}
	return o
}
