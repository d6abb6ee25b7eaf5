package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ScheduleParser accepts standard five-field specs and descriptors such as "@every 5m".
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		// Report mapstructure keys (base_url) rather than Go field names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := v.RegisterValidation("cron_schedule", validateCronSchedule); err != nil {
			panic(fmt.Sprintf("registering cron_schedule validation: %v", err))
		}
		validate = v
	})
	return validate
}

func validateCronSchedule(fl validator.FieldLevel) bool {
	_, err := ScheduleParser.Parse(fl.Field().String())
	return err == nil
}

// Validate checks every section and reports the first offending key.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: %s (rule: %s, value: %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
