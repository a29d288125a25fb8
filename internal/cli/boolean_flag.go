package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	switchFlagTypeName       = "bool"
	switchTrueLiteral        = "true"
	switchAcceptedLiterals   = "true, false, yes, no, on, off, 1 or 0"
	switchInvalidValueFormat = "invalid value %q for %s: want %s"
	longFlagPrefix           = "--"
	shortFlagPrefix          = "-"
)

// switchLiterals are the values a fuse switch accepts after "=".
var switchLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
}

// spacedSwitchLiterals may also follow a switch as a separate argument.
// Digits are left out because "1" or "0" are plausible paths for fuse.
var spacedSwitchLiterals = map[string]struct{}{
	"true":  {},
	"false": {},
	"yes":   {},
	"no":    {},
	"on":    {},
	"off":   {},
}

// switchFlag is a boolean flag that is true when given bare and knows both
// of its spellings, so "-c no" and "--cxml no" are read alike.
type switchFlag struct {
	target    *bool
	name      string
	shorthand string
}

func (flag *switchFlag) Set(input string) error {
	literal := strings.ToLower(strings.TrimSpace(input))
	if literal == "" {
		literal = switchTrueLiteral
	}
	parsed, ok := switchLiterals[literal]
	if !ok {
		return fmt.Errorf(switchInvalidValueFormat, input, flag.spelling(), switchAcceptedLiterals)
	}
	*flag.target = parsed
	return nil
}

func (flag *switchFlag) String() string {
	if flag == nil || flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *switchFlag) Type() string {
	return switchFlagTypeName
}

// spelling names the flag the way a user may have typed it.
func (flag *switchFlag) spelling() string {
	if flag.shorthand == "" {
		return longFlagPrefix + flag.name
	}
	return shortFlagPrefix + flag.shorthand + "/" + longFlagPrefix + flag.name
}

// arguments lists the command line forms that set the flag.
func (flag *switchFlag) arguments() []string {
	forms := []string{longFlagPrefix + flag.name}
	if flag.shorthand != "" {
		forms = append(forms, shortFlagPrefix+flag.shorthand)
	}
	return forms
}

// registerBooleanFlag adds a switch that is true when given bare and also
// accepts yes/no style literals.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.VarP(&switchFlag{target: target, name: name, shorthand: shorthand}, name, shorthand, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = switchTrueLiteral
	}
}

// normalizeBooleanFlagArguments rewrites "--flag no" and "-f no" into the
// "=" form for switches so the literal is not mistaken for a path.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	switchArguments := collectSwitchArguments(command.Flags())
	if len(switchArguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == longFlagPrefix {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if _, isSwitch := switchArguments[currentArgument]; isSwitch && index+1 < len(arguments) {
			nextArgument := arguments[index+1]
			if _, isLiteral := spacedSwitchLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
				normalized = append(normalized, currentArgument+"="+nextArgument)
				index++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectSwitchArguments(flagSet *pflag.FlagSet) map[string]struct{} {
	forms := map[string]struct{}{}
	flagSet.VisitAll(func(flag *pflag.Flag) {
		if value, isSwitch := flag.Value.(*switchFlag); isSwitch {
			for _, form := range value.arguments() {
				forms[form] = struct{}{}
			}
		}
	})
	return forms
}
