package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/fuse/internal/config"
)

var initConfigTargetLiterals = map[string]struct{}{
	string(config.InitTargetLocal):  {},
	string(config.InitTargetGlobal): {},
}

// registerInitConfigFlag adds --init-config, which defaults to the local
// target when given without a value.
func registerInitConfigFlag(flagSet *pflag.FlagSet, target *string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.StringVar(target, initConfigFlagName, "", initConfigFlagDescription)
	if lookup := flagSet.Lookup(initConfigFlagName); lookup != nil {
		lookup.NoOptDefVal = string(config.InitTargetLocal)
	}
}

// normalizeInitConfigArguments joins "--init-config global" into one
// argument. Any other following argument stays positional.
func normalizeInitConfigArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if current == "--"+initConfigFlagName && index+1 < len(arguments) {
			nextValue := strings.ToLower(strings.TrimSpace(arguments[index+1]))
			if _, known := initConfigTargetLiterals[nextValue]; known {
				normalized = append(normalized, fmt.Sprintf("--%s=%s", initConfigFlagName, nextValue))
				index += 2
				continue
			}
		}
		normalized = append(normalized, current)
		index++
	}
	return normalized
}
