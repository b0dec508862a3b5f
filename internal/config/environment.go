package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tjgokken/solmap/internal/utils"
)

// Environment variables overlaying file configuration.
const (
	EnvironmentFormat           = utils.EnvironmentPrefix + "FORMAT"
	EnvironmentCodeDetails      = utils.EnvironmentPrefix + "CODE_DETAILS"
	EnvironmentAnnotationErrors = utils.EnvironmentPrefix + "ANNOTATION_ERRORS"
	EnvironmentOutput           = utils.EnvironmentPrefix + "OUTPUT"
	EnvironmentExclude          = utils.EnvironmentPrefix + "EXCLUDE"
	EnvironmentModel            = utils.EnvironmentPrefix + "MODEL"
)

var environmentKeys = []string{
	EnvironmentFormat,
	EnvironmentCodeDetails,
	EnvironmentAnnotationErrors,
	EnvironmentOutput,
	EnvironmentExclude,
	EnvironmentModel,
}

// environmentValues holds the solmap variables of the dotenv file and the process
// environment; process values win.
type environmentValues map[string]string

func loadEnvironment(workingDirectory string, lookup func(string) (string, bool)) (environmentValues, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := environmentValues{}

	dotenvPath := filepath.Join(workingDirectory, utils.EnvironmentFileName)
	if _, statErr := os.Stat(dotenvPath); statErr == nil {
		fileValues, readErr := godotenv.Read(dotenvPath)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", dotenvPath, readErr)
		}
		for _, key := range environmentKeys {
			if value, found := fileValues[key]; found {
				values[key] = value
			}
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", dotenvPath, statErr)
	}

	for _, key := range environmentKeys {
		if value, found := lookup(key); found {
			values[key] = value
		}
	}
	return values, nil
}

func (values environmentValues) configuration() (ApplicationConfiguration, error) {
	var export ExportConfiguration
	export.Format = values[EnvironmentFormat]
	export.AnnotationErrors = values[EnvironmentAnnotationErrors]
	export.Output = values[EnvironmentOutput]
	export.Tokens.Model = values[EnvironmentModel]
	if excluded, found := values[EnvironmentExclude]; found {
		export.Exclude.Directories = utils.SplitList([]string{excluded})
	}
	if rawCodeDetails, found := values[EnvironmentCodeDetails]; found && rawCodeDetails != "" {
		codeDetails, known := utils.ParseToggle(rawCodeDetails)
		if !known {
			return ApplicationConfiguration{}, fmt.Errorf("parse %s=%q: accepted values: %s", EnvironmentCodeDetails, rawCodeDetails, utils.ToggleAcceptedValues)
		}
		export.CodeDetails = &codeDetails
	}
	return ApplicationConfiguration{Export: export}, nil
}
