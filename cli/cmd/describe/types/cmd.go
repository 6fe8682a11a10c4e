package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/internal/subsystem"
	"openportal.dev/openportal/runtime"
)

// New represents the command to describe portal types.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [subsystem] [type]",
		Short: "Describe portal types and their configuration schema",
		Long: `Describe portal types registered in various subsystems.
If no subsystem is specified, it lists all available subsystems.
If a subsystem is specified, it lists all types in that subsystem.
If both subsystem and type are specified, it prints the JSON schema of that type.`,
		Args:              cobra.MaximumNArgs(2),
		RunE:              run,
		DisableAutoGenTag: true,
	}
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listSubsystems(cmd)
	}
	sub := subsystem.Get(args[0])
	if sub == nil {
		return fmt.Errorf("unknown subsystem: %s", args[0])
	}
	if len(args) == 1 {
		return listTypes(cmd, sub)
	}
	return describeType(cmd, sub, args[1])
}

func listSubsystems(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Available subsystems:")
	list := subsystem.List()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	for _, s := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "  - \033[1m%-15s\033[0m %s\n", s.Name, s.Title)
	}
	return nil
}

func listTypes(cmd *cobra.Command, s *subsystem.Subsystem) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Types of subsystem %q:\n", s.Name)

	types := s.Scheme.Types()
	names := make([]string, 0, len(types))
	for _, typ := range types {
		names = append(names, typ.String())
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
	}
	return nil
}

func describeType(cmd *cobra.Command, s *subsystem.Subsystem, typeName string) error {
	typ, err := runtime.ParseType(typeName)
	if err != nil {
		return fmt.Errorf("invalid type name %s: %w", typeName, err)
	}
	prototype, err := s.Scheme.NewObject(typ)
	if err != nil {
		return fmt.Errorf("unknown type %s in subsystem %s: %w", typeName, s.Name, err)
	}
	schema, err := runtime.ReflectJSONSchema(prototype)
	if err != nil {
		return fmt.Errorf("failed to extract schema for type %s: %w", typeName, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, schema, "", "  "); err != nil {
		return fmt.Errorf("failed to format schema for type %s: %w", typeName, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), buf.String())
	return nil
}
