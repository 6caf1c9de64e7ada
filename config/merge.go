package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if override.Just.Path != "" {
		result.Just.Path = override.Just.Path
	}
	if override.Just.Justfile != "" {
		result.Just.Justfile = override.Just.Justfile
	}
	if override.Just.WorkingDirectory != "" {
		result.Just.WorkingDirectory = override.Just.WorkingDirectory
	}

	if override.Shell.Posix != "" {
		result.Shell.Posix = override.Shell.Posix
		result.Shell.PosixArgs = override.Shell.PosixArgs
	} else if len(override.Shell.PosixArgs) > 0 {
		result.Shell.PosixArgs = override.Shell.PosixArgs
	}
	if override.Shell.Windows != "" {
		result.Shell.Windows = override.Shell.Windows
		result.Shell.WindowsArgs = override.Shell.WindowsArgs
	} else if len(override.Shell.WindowsArgs) > 0 {
		result.Shell.WindowsArgs = override.Shell.WindowsArgs
	}

	if override.Dispatch.Mode != "" {
		result.Dispatch.Mode = override.Dispatch.Mode
	}
	if override.Dispatch.ReuseSession != nil {
		result.Dispatch.ReuseSession = override.Dispatch.ReuseSession
	}

	if override.Session.Backend != "" {
		result.Session.Backend = override.Session.Backend
	}
	if override.Session.TmuxSocket != "" {
		result.Session.TmuxSocket = override.Session.TmuxSocket
	}

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			// Otherwise just replace
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}
