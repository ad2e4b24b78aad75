package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	required                             bool
	isBool                               bool
	isSlice                              bool
}

var (
	forceFlag = commandLineFlag{
		name:      "force",
		shorthand: "f",
		usage:     "ignore the cached status and ask the license server",
		isBool:    true,
	}
	siteFlag = commandLineFlag{
		name:    "site",
		usage:   "additional site id to clean up (repeatable)",
		isSlice: true,
	}
	varsFlag = commandLineFlag{
		name:      "vars",
		shorthand: "v",
		usage:     "JSON file with the page's automatic variables",
		required:  true,
	}
	customFlag = commandLineFlag{
		name:      "custom",
		shorthand: "c",
		usage:     "JSON file with custom variables (premium)",
	}
	debugFlag = commandLineFlag{
		name:   "debug",
		usage:  "include debug comments in the output",
		isBool: true,
	}
)

func initFlags(cmd *cobra.Command, flags ...commandLineFlag) {
	for _, flag := range flags {
		switch {
		case flag.isBool:
			cmd.Flags().BoolP(flag.name, flag.shorthand, flag.defaultValue == "true", flag.usage)
		case flag.isSlice:
			cmd.Flags().StringSliceP(flag.name, flag.shorthand, nil, flag.usage)
		default:
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}
