package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// multiValueFlagAnnotation marks flags that accept several space-separated values.
const multiValueFlagAnnotation = "dirsnap_multi_value"

// registerMultiValueFlag registers a repeatable string flag that also accepts
// space-separated values, as in "--exclude dist *.log".
func registerMultiValueFlag(flagSet *pflag.FlagSet, target *[]string, name string, shorthand string, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.StringArrayVarP(target, name, shorthand, nil, usage)
	_ = flagSet.SetAnnotation(name, multiValueFlagAnnotation, []string{booleanFlagTrueLiteral})
}

// normalizeMultiValueFlagArguments expands "--flag a b c" into
// "--flag=a --flag=b --flag=c". Values are consumed until the next argument that
// starts with "-". A lone "--" ends flag processing.
func normalizeMultiValueFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	multiValueFlags := map[string]string{}
	collectMultiValueFlagNames(command, multiValueFlags)
	if len(multiValueFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == longFlagPrefix {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isMultiValue := lookupFlagName(currentArgument, multiValueFlags)
		if !isMultiValue {
			normalized = append(normalized, currentArgument)
			index++
			continue
		}
		index++
		consumed := 0
		for index < len(arguments) && !strings.HasPrefix(arguments[index], shortFlagPrefix) {
			normalized = append(normalized, longFlagPrefix+flagName+flagValueSeparator+arguments[index])
			index++
			consumed++
		}
		if consumed == 0 {
			normalized = append(normalized, currentArgument)
		}
	}
	return normalized
}

func collectMultiValueFlagNames(command *cobra.Command, target map[string]string) {
	command.Flags().VisitAll(func(flag *pflag.Flag) {
		if _, annotated := flag.Annotations[multiValueFlagAnnotation]; !annotated {
			return
		}
		target[longFlagPrefix+flag.Name] = flag.Name
		if flag.Shorthand != "" {
			target[shortFlagPrefix+flag.Shorthand] = flag.Name
		}
	})
}
