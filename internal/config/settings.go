package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/eugenenazirov/lambda-settings/internal/regions"
	"github.com/eugenenazirov/lambda-settings/internal/settings"
	"github.com/eugenenazirov/lambda-settings/internal/sources"
)

const regionDiscoveryTimeout = 10 * time.Second

// discoverRegions is replaced in tests.
var discoverRegions = func(ctx context.Context, profile, region string) ([]string, error) {
	client, err := regions.NewClient(ctx, profile, region)
	if err != nil {
		return nil, err
	}
	return regions.Discover(ctx, client)
}

// SettingsOptions carries the caller-controlled inputs of a resolution.
type SettingsOptions struct {
	Overrides       map[string]string
	EnvFiles        []string
	TFVars          string
	Require         []string
	DiscoverRegions bool
	// WorkDir anchors dotenv discovery and the default tfvars location.
	WorkDir string
}

type flagger interface {
	Flag(name, help string) *kingpin.FlagClause
}

// RegisterSettingsFlags binds the shared settings flags to app or a command.
func RegisterSettingsFlags(app flagger) *SettingsOptions {
	opts := &SettingsOptions{Overrides: map[string]string{}}
	app.Flag("set", "Explicit setting override (name=value), highest precedence").Short('s').StringMapVar(&opts.Overrides)
	app.Flag("env-file", "Dotenv file to read; repeat to scan several, first match wins (default: discover .env upwards)").StringsVar(&opts.EnvFiles)
	app.Flag("tfvars", "Path to terraform.tfvars").Envar("TFVARS_PATH").StringVar(&opts.TFVars)
	app.Flag("require", "Fail when this setting resolves to nothing").StringsVar(&opts.Require)
	app.Flag("discover-regions", "Validate aws_region against regions returned by EC2").BoolVar(&opts.DiscoverRegions)
	app.Flag("workdir", "Directory used for .env and terraform.tfvars discovery").Default(".").StringVar(&opts.WorkDir)
	return opts
}

// Files returns the dotenv files and the tfvars file a resolution with opts
// reads. When dotenv files are discovered, the work directory's .env is
// included even if it does not exist yet.
func (o *SettingsOptions) Files() ([]string, error) {
	dotenvPaths, tfvars, err := o.files()
	if err != nil {
		return nil, err
	}
	if len(o.EnvFiles) == 0 {
		local, err := filepath.Abs(filepath.Join(o.workDir(), sources.DotenvFileName))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(dotenvPaths, local) {
			dotenvPaths = append([]string{local}, dotenvPaths...)
		}
	}
	return append(dotenvPaths, tfvars), nil
}

func (o *SettingsOptions) workDir() string {
	if o.WorkDir == "" {
		return "."
	}
	return o.WorkDir
}

func (o *SettingsOptions) files() ([]string, string, error) {
	workDir := o.workDir()

	dotenvPaths := slices.Clone(o.EnvFiles)
	if len(dotenvPaths) == 0 {
		found, err := sources.DiscoverDotenv(workDir)
		if err != nil {
			return nil, "", fmt.Errorf("discover dotenv files: %w", err)
		}
		dotenvPaths = found
	}

	tfvars := o.TFVars
	if tfvars == "" {
		tfvars = filepath.Join(workDir, sources.TFVarsFileName)
	}
	return dotenvPaths, tfvars, nil
}

// LoadSettings resolves settings for opts against the given environment
// snapshot.
func LoadSettings(ctx context.Context, opts *SettingsOptions, env map[string]string) (*settings.Settings, error) {
	if opts == nil {
		opts = &SettingsOptions{}
	}
	dotenvPaths, tfvars, err := opts.files()
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]any, len(opts.Overrides))
	for name, value := range opts.Overrides {
		overrides[name] = value
	}

	in := settings.Inputs{
		Overrides:   overrides,
		Env:         env,
		DotenvPaths: dotenvPaths,
		TFVarsPath:  tfvars,
		Require:     opts.Require,
	}

	if opts.DiscoverRegions {
		profile, region, err := discoveryTarget(opts.Overrides, dotenvPaths, tfvars, env)
		if err != nil {
			return nil, err
		}

		discoverCtx, cancel := context.WithTimeout(ctx, regionDiscoveryTimeout)
		defer cancel()

		found, err := discoverRegions(discoverCtx, profile, region)
		if err != nil {
			return nil, fmt.Errorf("discover regions: %w", err)
		}
		in.Regions = found
	}

	return settings.Resolve(in)
}

// discoveryTarget picks the AWS profile for the EC2 client in the same tier
// order Resolve uses. The region follows the SDK's own environment variables.
func discoveryTarget(overrides map[string]string, dotenvPaths []string, tfvarsPath string, env map[string]string) (string, string, error) {
	dotenv, err := sources.LoadDotenv(dotenvPaths)
	if err != nil {
		return "", "", fmt.Errorf("load dotenv: %w", err)
	}
	tfvars, err := sources.LoadTFVars(tfvarsPath)
	if err != nil {
		return "", "", fmt.Errorf("load tfvars: %w", err)
	}
	tfProfile, _ := tfvars.Values["aws_profile"].(string)

	profile := firstNonEmpty(
		overrides[settings.AWSProfile],
		dotenv.Values["AWS_PROFILE"],
		env["AWS_PROFILE"],
		tfProfile,
	)
	region := firstNonEmpty(env["AWS_REGION"], env["AWS_DEFAULT_REGION"])
	return profile, region, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
