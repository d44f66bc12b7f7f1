package calibration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is a rejected field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks tag constraints first, then the cross-field rules
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{Field: fieldPath(fe.Namespace()), Message: fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param())}
		}
		return err
	}

	for _, name := range cfg.Regression.Predictors {
		if name == cfg.Data.Target {
			return ValidationError{"regression.predictors", "target cannot be a predictor"}
		}
	}
	if cfg.Data.Target == cfg.Data.DateColumn {
		return ValidationError{"data.target", "target and date column must differ"}
	}
	if hasDuplicate(cfg.TimeSeries.P) || hasDuplicate(cfg.TimeSeries.D) || hasDuplicate(cfg.TimeSeries.Q) {
		return ValidationError{"timeseries", "grid values must be unique"}
	}

	return nil
}

// fieldPath turns "Config.Correlation.Sign" into "correlation.sign"
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

func hasDuplicate(xs []int) bool {
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return true
		}
		seen[x] = true
	}
	return false
}
