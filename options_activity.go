package observe

import "github.com/goliatone/go-observe/pkg/activity"

// WithActivityHooks attaches activity hooks that receive declaration and
// binding events. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) RegistryOption {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.activityChannel = channel
	}
}

// WithActivityActor sets the actor id stamped on emitted events.
func WithActivityActor(actorID string) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.activityActor = actorID
	}
}

// ActivityHooks returns a cloned slice of the registry's activity hooks. The
// returned slice can be safely mutated by the caller.
func (r *Registry) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return cloneActivityHooks(r.cfg.activityHooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
