package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/soir-live/soir/internal/buildinfo"
)

// Command creates a new cobra.Command that prints the build metadata main.go
// assembled at startup.
func Command(info *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("version:    %s\n", info.Version())
			fmt.Printf("build date: %s\n", info.BuildDate())
			fmt.Printf("system id:  %s\n", info.SystemID())
			return nil
		},
	}
}
