package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	FlagFormat            = "format"
	FlagFormatShortHand   = "f"
	FlagFormatJSON        = "json"
	FlagFormatGoBuildInfo = "gobuildinfo"
)

// BuildVersion is overridden through the linker on release builds.
var BuildVersion = "n/a"

type info struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Retrieve the version of the portal CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString(FlagFormat)
			if err != nil {
				return err
			}
			build, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("no build info available")
			}
			if BuildVersion != "n/a" {
				// Override the version if specified
				build.Main.Version = BuildVersion
			}
			switch format {
			case FlagFormatJSON:
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info{
					Version:   build.Main.Version,
					GoVersion: build.GoVersion,
				})
			case FlagFormatGoBuildInfo:
				_, err = io.Copy(cmd.OutOrStdout(), strings.NewReader(build.String()))
				return err
			default:
				return cmd.Help()
			}
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	cmd.Flags().StringP(FlagFormat, FlagFormatShortHand, FlagFormatJSON, "Format of the version output (json or gobuildinfo)")
	return cmd
}
