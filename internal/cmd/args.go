package cmd

import (
	"strconv"
	"strings"
)

// NormalizeArgs rewrites the colon forms of older tgrep releases into
// regular flags so cobra can parse them:
//
//	-t:N    -> --limit=N
//	-d:path -> --dir=path
//
// A colon limit that is not a positive integer means no limit, as it did
// before.
// Arguments after "--" are left untouched.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))

	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		switch {
		case strings.HasPrefix(arg, "-t:"):
			limit := parseLimit(strings.TrimPrefix(arg, "-t:"))
			out = append(out, "--limit="+strconv.FormatInt(limit, 10))
		case strings.HasPrefix(arg, "-d:"):
			out = append(out, "--dir="+strings.TrimPrefix(arg, "-d:"))
		default:
			out = append(out, arg)
		}
	}

	return out
}
