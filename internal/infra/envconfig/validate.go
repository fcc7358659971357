package envconfig

import (
	"fmt"
	"strings"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// Validate checks the resolved configuration. Failures are fatal at
// startup and carry CodeInvalidConfig.
func Validate(cfg domain.Config) error {
	var errs []string

	if len(cfg.Providers) == 0 {
		errs = append(errs, "no tool providers configured: set "+domain.EnvProviderPrefix+"_1_NAME or "+domain.EnvProviderPrefix+"_NAME")
	}

	seen := make(map[string]struct{}, len(cfg.Providers))
	for i, p := range cfg.Providers {
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Sprintf("providers[%d]: duplicate name %q", i, p.Name))
		} else if p.Name != "" {
			seen[p.Name] = struct{}{}
		}

		switch p.Transport {
		case domain.TransportRemote:
			if p.URL == "" {
				errs = append(errs, fmt.Sprintf("providers[%d] %q: remote transport requires a URL", i, p.Name))
			}
		case domain.TransportLocal:
			if p.Command == "" {
				errs = append(errs, fmt.Sprintf("providers[%d] %q: local-process transport requires a command", i, p.Name))
			}
		default:
			errs = append(errs, fmt.Sprintf("providers[%d] %q: unknown transport %q", i, p.Name, p.Transport))
		}
	}

	if len(errs) > 0 {
		return domain.E(domain.CodeInvalidConfig, "envconfig.Validate", strings.Join(errs, "; "), nil)
	}
	return nil
}
