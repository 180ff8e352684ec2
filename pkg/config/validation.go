package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validLogLevels lists accepted logging levels (after lowercase normalization).
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// Validate logging level
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	// Validate at least one mount exists
	if len(cfg.Mounts) == 0 {
		return fmt.Errorf("mounts: at least one mount must be configured")
	}

	// Validate mount names are usable as URL path segments
	for name := range cfg.Mounts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("mounts: mount name must not be empty")
		}
		if strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("mounts[%s]: mount name must not contain path separators", name)
		}
	}

	// Validate per-user grants reference configured users.
	// Group grants are not checked: a group may exist only through grants.
	for mountName, mount := range cfg.Mounts {
		for username := range mount.Users {
			if _, ok := cfg.Users[username]; !ok {
				return fmt.Errorf("mounts[%s]: grant references unknown user %q", mountName, username)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
