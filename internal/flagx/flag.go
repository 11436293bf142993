// Package flagx lets several components pick their own flags out of one
// command line, and finds the optional config file passed with -c/-config.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags, together with
// their values. Both "-c conf.yaml" and "--config=conf.yaml" are handled.
// A following token that starts with "-" is never taken as a value.
//
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	kept, _ := splitArgs(args, allowedFlags)
	return kept
}

// RemoveArgs is the complement of FilterArgs: it drops the listed flags
// and their values and returns everything else in order.
func RemoveArgs(args []string, flags []string) []string {
	_, rest := splitArgs(args, flags)
	return rest
}

func splitArgs(args []string, flags []string) (kept, rest []string) {
	allowed := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		allowed[f] = struct{}{}
	}

	kept = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				kept = append(kept, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			kept = append(kept, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				kept = append(kept, args[i+1])
				i++
			}
			continue
		}
		rest = append(rest, arg)
	}

	return kept, rest
}

// ConfigFileFlag returns the path given with -c or -config in args, or ""
// when there is none. When both appear the last one wins.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file (JSON or YAML)")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--c", "--config"}))

	return path
}
