package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/sipeed/mediapaste/pkg/accept"
	"github.com/spf13/cobra"
)

func newPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policy ACCEPT",
		Short: "Show how an accept string is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printSpecifiers(cmd.OutOrStdout(), accept.ParseAccept(args[0]))
			return nil
		},
	}
}

func printSpecifiers(out io.Writer, s accept.Specifiers) {
	fmt.Fprintf(out, "extensions:   %v\n", sortedKeys(s.Extensions))
	fmt.Fprintf(out, "mime types:   %v\n", sortedKeys(s.MIMETypes))
	fmt.Fprintf(out, "categories:   %v\n", sortedKeys(s.Categories))
	if len(s.Unrecognized) > 0 {
		fmt.Fprintf(out, "unrecognized: %v\n", s.Unrecognized)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
