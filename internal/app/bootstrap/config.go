// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/stratainit/internal/app/system/timeouts"
	"github.com/dalemusser/stratainit/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAINIT"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, app_user, etc.
//   - Environment variables: STRATAINIT_MONGO_URI, STRATAINIT_APP_USER, etc.
//   - Command-line flags: --mongo_uri, --app_user, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB administrative connection URI"},
	{Name: "mongo_database", Default: models.DefaultDatabase, Desc: "Database the application user and collection are created in"},
	{Name: "mongo_max_pool_size", Default: 2, Desc: "MongoDB max connection pool size (default: 2)"},

	// Application credential
	{Name: "app_user", Default: models.DefaultUsername, Desc: "Application user to create"},
	{Name: "app_password", Default: models.DefaultPassword, Desc: "Password for the application user"},
	{Name: "app_role", Default: models.RoleReadWrite, Desc: "Role granted to the application user on mongo_database"},

	// Collection
	{Name: "app_collection", Default: models.DefaultCollection, Desc: "Empty collection to create in mongo_database"},

	{Name: "verify_after_init", Default: true, Desc: "Check the created user, grants and collection after initializing"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, environment variables (WAFFLE_* for core, STRATAINIT_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		AppUser:     appValues.String("app_user"),
		AppPassword: appValues.String("app_password"),
		AppRole:     appValues.String("app_role"),

		AppCollection: appValues.String("app_collection"),

		VerifyAfterInit: appValues.Bool("verify_after_init"),
	}

	configureTimeouts(coreCfg)

	return coreCfg, appCfg, nil
}

// configureTimeouts takes the connect and command timeouts from WAFFLE core
// config. Connect covers server selection and auth; Command bounds the
// createUser/create round-trips the same way index setup is bounded, so in
// a normal run WAFFLE's index_boot_timeout default applies, not
// timeouts.DefaultCommand.
func configureTimeouts(coreCfg *config.CoreConfig) {
	timeouts.Configure(timeouts.Config{
		Connect: coreCfg.DBConnectTimeout,
		Command: coreCfg.IndexBootTimeout,
	})
}

var configValidator = validate.New()

// ValidateConfig rejects configs that could not describe a bootstrap at all:
// an unparseable URI or a blank required value. Whether the user, role or
// collection name is acceptable is left to MongoDB.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	err := configValidator.Struct(appCfg)
	if err == nil {
		return nil
	}
	var errs validate.Errors
	if !errors.As(err, &errs) {
		return err
	}
	// Struct hands back a typed, possibly empty Errors even when every rule passed.
	if len(errs) == 0 {
		return nil
	}

	labels := fieldLabels(appCfg)
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		msgs = append(msgs, formatProblem(label, e.Rule))
	}
	logger.Error("invalid configuration", zap.Strings("problems", msgs))
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func formatProblem(label, rule string) string {
	switch rule {
	case "required":
		return label + " is required"
	default:
		return label + " is invalid (" + rule + ")"
	}
}

// fieldLabels maps field names to their "label" tag.
func fieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if label := field.Tag.Get("label"); label != "" {
			labels[field.Name] = label
		}
	}
	return labels
}
