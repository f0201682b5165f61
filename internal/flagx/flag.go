// Package flagx lets several independent pflag sets share one command line:
// each set sees only the arguments that belong to it.
package flagx

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// FilterArgs returns the subset of args made of allowed flags and their
// values. Supported forms are "-f value", "--flag value", "-f=value" and
// "--flag=value". A value is taken from the following argument only when it
// does not itself start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}
	return filter(args, allowed)
}

// FilterFlagSet is FilterArgs with the allowed names taken from fs. Boolean
// flags never consume the argument that follows them.
func FilterFlagSet(args []string, fs *pflag.FlagSet) []string {
	allowed := make(map[string]bool)
	fs.VisitAll(func(f *pflag.Flag) {
		takesValue := f.NoOptDefVal == ""
		allowed["--"+f.Name] = takesValue
		if f.Shorthand != "" {
			allowed["-"+f.Shorthand] = takesValue
		}
	})
	return filter(args, allowed)
}

// filter maps a flag spelling to whether it consumes a separate value.
func filter(args []string, allowed map[string]bool) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		takesValue, ok := allowed[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile extracts the -c/--config value from args, or "" when absent.
// When the flag is repeated the last value wins.
func ConfigFile(args []string) string {
	var path string

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&path, "config", "c", "", "path to config file (JSON or YAML)")
	_ = fs.Parse(FilterFlagSet(args, fs))

	return path
}
