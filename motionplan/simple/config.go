package simple

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"go.viam.com/simpleplanner/logging"
)

// The profile types ProfilesFromConfig can build.
const (
	LVSProfileType       = "lvs"
	FixedSizeProfileType = "fixed_size"
)

// ProfileAttributeSchemas holds the JSON schema of the attributes of each profile type.
var ProfileAttributeSchemas = map[string]*jsonschema.Schema{
	LVSProfileType:       jsonschema.Reflect(&LVSConfig{}),
	FixedSizeProfileType: jsonschema.Reflect(&FixedSizeConfig{}),
}

// ProfileConfig describes a named profile: its type and the attributes of that type's config.
type ProfileConfig struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes"`
}

// wholeNumberHook rejects a float headed for an integer field unless it is a whole number. JSON numbers decode as
// float64, which mapstructure would otherwise truncate.
func wholeNumberHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errors.Errorf("%v is not a whole number", f)
	}
	return data, nil
}

func decodeAttributes(attrs map[string]interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      result,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(wholeNumberHook),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attrs)
}

// DecodeLVSConfig converts profile attributes into an LVSConfig.
func DecodeLVSConfig(attrs map[string]interface{}) (*LVSConfig, error) {
	var conf LVSConfig
	if err := decodeAttributes(attrs, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// DecodeFixedSizeConfig converts profile attributes into a FixedSizeConfig.
func DecodeFixedSizeConfig(attrs map[string]interface{}) (*FixedSizeConfig, error) {
	var conf FixedSizeConfig
	if err := decodeAttributes(attrs, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// ProfilesFromConfig builds every configured profile, keyed by name.
func ProfilesFromConfig(cfgs map[string]ProfileConfig, logger logging.Logger) (map[string]PlanProfile, error) {
	names := lo.Keys(cfgs)
	sort.Strings(names)

	profiles := make(map[string]PlanProfile, len(cfgs))
	for _, name := range names {
		cfg := cfgs[name]
		path := fmt.Sprintf("profiles.%s", name)
		profileLogger := logger.Sublogger(name)
		switch cfg.Type {
		case LVSProfileType:
			conf, err := DecodeLVSConfig(cfg.Attributes)
			if err != nil {
				return nil, goutils.NewConfigValidationError(path, err)
			}
			if err := conf.Validate(path); err != nil {
				return nil, err
			}
			profiles[name] = &LVSPlanProfile{cfg: *conf, logger: profileLogger}
		case FixedSizeProfileType:
			conf, err := DecodeFixedSizeConfig(cfg.Attributes)
			if err != nil {
				return nil, goutils.NewConfigValidationError(path, err)
			}
			if err := conf.Validate(path); err != nil {
				return nil, err
			}
			profiles[name] = &FixedSizePlanProfile{cfg: *conf, logger: profileLogger}
		case "":
			return nil, goutils.NewConfigValidationFieldRequiredError(path, "type")
		default:
			return nil, goutils.NewConfigValidationError(path, errors.Errorf("unknown profile type %q", cfg.Type))
		}
	}
	return profiles, nil
}
