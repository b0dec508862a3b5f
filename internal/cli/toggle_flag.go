package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tjgokken/solmap/internal/utils"
)

const (
	toggleFlagTypeName             = "bool"
	toggleFlagTrueLiteral          = "true"
	toggleFlagInvalidValueTemplate = "invalid boolean value %q for --%s; accepted values: %s"
)

// toggleFlag is a boolean flag that also accepts yes/no/on/off literals, so
// `--code no` and `--code=off` both work.
type toggleFlag struct {
	target *bool
	name   string
}

func (flag *toggleFlag) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = toggleFlagTrueLiteral
	}
	parsed, known := utils.ParseToggle(input)
	if !known {
		return fmt.Errorf(toggleFlagInvalidValueTemplate, input, flag.name, utils.ToggleAcceptedValues)
	}
	*flag.target = parsed
	return nil
}

func (flag *toggleFlag) String() string {
	if flag == nil || flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *toggleFlag) Type() string {
	return toggleFlagTypeName
}

// registerToggleFlag adds a toggle defaulting to false; configuration supplies other
// defaults and flags.Changed tells whether the user set it explicitly.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, usage string) {
	*target = false
	flagSet.VarP(&toggleFlag{target: target, name: name}, name, shorthand, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.DefValue = strconv.FormatBool(false)
		registered.NoOptDefVal = toggleFlagTrueLiteral
	}
}

// normalizeToggleArguments rewrites `--name literal` into `--name=literal` and
// `-x literal` into `-x=literal` for every toggle of command and its children, since
// pflag never consumes a separate value for flags with NoOptDefVal.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleSpellings := map[string]struct{}{}
	collectToggleNames(command, toggleSpellings)
	if len(toggleSpellings) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if _, isToggle := toggleSpellings[currentArgument]; isToggle && index+1 < len(arguments) {
			nextArgument := arguments[index+1]
			if _, isLiteral := utils.ParseToggle(nextArgument); isLiteral {
				normalized = append(normalized, currentArgument+"="+nextArgument)
				index++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

// collectToggleNames records every spelling of a toggle: `--name` and, when
// registered, `-x`.
func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil {
		return
	}
	collect := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleFlag); !isToggle {
			return
		}
		target["--"+flag.Name] = struct{}{}
		if flag.Shorthand != "" {
			target["-"+flag.Shorthand] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		collectToggleNames(child, target)
	}
}
